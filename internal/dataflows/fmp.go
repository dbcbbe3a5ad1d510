package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/FinSightGo/config"
)

const fmpBaseURL = "https://financialmodelingprep.com/api/v3"

// Statement identifies one financial-statement endpoint of the FMP API.
// The set is closed; adding an endpoint means adding a constant here and a
// path in the table below.
type Statement int

const (
	IncomeStatement Statement = iota
	BalanceSheet
	CashFlowStatement
	KeyMetrics
	FinancialRatios
	FinancialGrowth
)

var statementPaths = map[Statement]string{
	IncomeStatement:   "income-statement",
	BalanceSheet:      "balance-sheet-statement",
	CashFlowStatement: "cash-flow-statement",
	KeyMetrics:        "key-metrics",
	FinancialRatios:   "ratios",
	FinancialGrowth:   "cash-flow-statement-growth",
}

// Statements lists every supported statement in declaration order.
func Statements() []Statement {
	return []Statement{
		IncomeStatement,
		BalanceSheet,
		CashFlowStatement,
		KeyMetrics,
		FinancialRatios,
		FinancialGrowth,
	}
}

// Path returns the URL path segment for the statement.
func (s Statement) Path() string {
	return statementPaths[s]
}

func (s Statement) String() string {
	if p, ok := statementPaths[s]; ok {
		return p
	}
	return fmt.Sprintf("statement(%d)", int(s))
}

// DataUnavailableError reports a non-2xx answer from the data provider.
// The provider's body is preserved so callers can forward it to the agent.
type DataUnavailableError struct {
	Statement  Statement
	Ticker     string
	StatusCode int
	Body       string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("fmp: %s data unavailable for %s (HTTP %d)", e.Statement, e.Ticker, e.StatusCode)
}

// FMPClient fetches financial statements from the Financial Modeling Prep API.
type FMPClient struct {
	client *resty.Client
	apiKey string
}

func NewFMPClient(cfg *config.Config) *FMPClient {
	client := resty.New()
	client.SetBaseURL(fmpBaseURL)
	client.SetTimeout(cfg.HTTPTimeout())

	return &FMPClient{
		client: client,
		apiKey: cfg.FMPAPIKey,
	}
}

// WithBaseURL points the client at an alternative provider endpoint.
func (fc *FMPClient) WithBaseURL(baseURL string) *FMPClient {
	fc.client.SetBaseURL(baseURL)
	return fc
}

// Fetch retrieves one statement for ticker and returns the provider's JSON
// body verbatim. period and limit are forwarded untouched; the provider
// decides what an empty period or a zero limit means. A non-2xx status
// yields a *DataUnavailableError carrying the provider's body.
func (fc *FMPClient) Fetch(ctx context.Context, stmt Statement, ticker, period string, limit int) (string, error) {
	if _, ok := statementPaths[stmt]; !ok {
		return "", fmt.Errorf("fmp: unknown statement %d", int(stmt))
	}
	if ticker == "" {
		return "", fmt.Errorf("fmp: ticker must not be empty")
	}

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period": period,
			"limit":  strconv.Itoa(limit),
			"apikey": fc.apiKey,
		}).
		Get("/" + stmt.Path() + "/" + url.PathEscape(ticker))
	if err != nil {
		return "", fmt.Errorf("fmp: fetch %s for %s: %w", stmt, ticker, err)
	}

	if resp.IsError() {
		return "", &DataUnavailableError{
			Statement:  stmt,
			Ticker:     ticker,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return resp.String(), nil
}
