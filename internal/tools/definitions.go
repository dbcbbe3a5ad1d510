package tools

import (
	"github.com/dyike/FinSightGo/internal/assistant"
)

var toolDescriptions = map[Name]string{
	GetIncomeStatement:   "Retrieves income statement data for a given stock ticker.",
	GetBalanceSheet:      "Retrieves the balance sheet statement for a given ticker.",
	GetCashFlowStatement: "Retrieves the cash flow statement for a given ticker.",
	GetKeyMetrics:        "Retrieves key financial metrics for a given ticker.",
	GetFinancialRatios:   "Retrieves financial ratios for a given ticker.",
	GetFinancialGrowth:   "Retrieves financial growth data for a given ticker.",
	GetStockQuote:        "Retrieves the current real-time stock quote for a given ticker.",
}

// statementParameters is the JSON-schema argument object shared by every
// statement tool: ticker required, period and limit optional.
func statementParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL",
			},
			"period": map[string]interface{}{
				"type":        "string",
				"description": "Reporting period: 'annual' or 'quarter'",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of records to retrieve",
			},
		},
		"required": []string{"ticker"},
	}
}

func quoteParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL",
			},
		},
		"required": []string{"ticker"},
	}
}

// Definitions returns the tool declarations sent to the platform when the
// assistant is created.
func Definitions() []assistant.Tool {
	ordered := []Name{
		GetIncomeStatement,
		GetBalanceSheet,
		GetCashFlowStatement,
		GetKeyMetrics,
		GetFinancialRatios,
		GetFinancialGrowth,
		GetStockQuote,
	}

	defs := make([]assistant.Tool, 0, len(ordered))
	for _, name := range ordered {
		params := statementParameters()
		if name == GetStockQuote {
			params = quoteParameters()
		}
		defs = append(defs, assistant.Tool{
			Type: "function",
			Function: &assistant.FunctionDefinition{
				Name:        string(name),
				Description: toolDescriptions[name],
				Parameters:  params,
			},
		})
	}
	return defs
}
