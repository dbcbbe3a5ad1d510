// Package tools maps agent-issued tool names onto the data retrieval
// clients. The mapping is closed: unknown names resolve to ErrUnknownTool,
// never to a silent miss.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dyike/FinSightGo/internal/dataflows"
)

// Name enumerates the callable tools declared to the assistant.
type Name string

const (
	GetIncomeStatement   Name = "get_income_statement"
	GetBalanceSheet      Name = "get_balance_sheet"
	GetCashFlowStatement Name = "get_cash_flow_statement"
	GetKeyMetrics        Name = "get_key_metrics"
	GetFinancialRatios   Name = "get_financial_ratios"
	GetFinancialGrowth   Name = "get_financial_growth"
	GetStockQuote        Name = "get_stock_quote"
)

// statementTools pairs each statement tool with its FMP endpoint.
var statementTools = map[Name]dataflows.Statement{
	GetIncomeStatement:   dataflows.IncomeStatement,
	GetBalanceSheet:      dataflows.BalanceSheet,
	GetCashFlowStatement: dataflows.CashFlowStatement,
	GetKeyMetrics:        dataflows.KeyMetrics,
	GetFinancialRatios:   dataflows.FinancialRatios,
	GetFinancialGrowth:   dataflows.FinancialGrowth,
}

// Args is the argument object every tool accepts. Absent fields keep their
// zero values and are forwarded as such.
type Args struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`
	Limit  int    `json:"limit"`
}

// Handler executes one tool invocation and returns its JSON output.
type Handler func(ctx context.Context, args Args) (string, error)

// ErrUnknownTool marks a tool name outside the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Registry is the closed name-to-handler mapping.
type Registry struct {
	handlers map[Name]Handler
}

// NewRegistry wires the statement tools to the FMP client and the quote
// tool to the quote client.
func NewRegistry(fmp *dataflows.FMPClient, quotes *dataflows.QuoteClient) *Registry {
	handlers := make(map[Name]Handler, len(statementTools)+1)

	for name, stmt := range statementTools {
		stmt := stmt
		handlers[name] = func(ctx context.Context, args Args) (string, error) {
			return fmp.Fetch(ctx, stmt, args.Ticker, args.Period, args.Limit)
		}
	}

	handlers[GetStockQuote] = func(ctx context.Context, args Args) (string, error) {
		return quotes.GetQuoteJSON(args.Ticker)
	}

	return &Registry{handlers: handlers}
}

// Resolve looks a tool name up; unknown names fail with ErrUnknownTool.
func (r *Registry) Resolve(name string) (Handler, error) {
	handler, ok := r.handlers[Name(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return handler, nil
}

// Execute parses the JSON argument object and invokes the named tool.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	handler, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	var args Args
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("tool %s: parse arguments: %w", name, err)
		}
	}

	return handler(ctx, args)
}
