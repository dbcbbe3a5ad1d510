package dataflows

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/dyike/FinSightGo/config"
)

// Quote is a normalized real-time quote snapshot. Prices are decimals
// rounded to cents so the JSON handed to the agent stays stable.
type Quote struct {
	Symbol string          `json:"symbol"`
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// QuoteClient fetches real-time quotes from Yahoo Finance. Quotes move
// constantly, so the cache TTL is short.
type QuoteClient struct {
	cache *CacheManager
}

func NewQuoteClient(cfg *config.Config) *QuoteClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "quotes")
	cache := NewCacheManager(cacheDir, 1*time.Minute, cfg.CacheEnabled)

	return &QuoteClient{
		cache: cache,
	}
}

// GetQuote gets current quote data for a symbol
func (qc *QuoteClient) GetQuote(symbol string) (*Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)

	// Check cache first
	var cached Quote
	if qc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *Quote
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote data for %s", symbol)
		}

		result = &Quote{
			Symbol: symbol,
			Date:   time.Now().Format("2006-01-02"),
			Open:   decimal.NewFromFloat(q.RegularMarketOpen).Round(2),
			High:   decimal.NewFromFloat(q.RegularMarketDayHigh).Round(2),
			Low:    decimal.NewFromFloat(q.RegularMarketDayLow).Round(2),
			Price:  decimal.NewFromFloat(q.RegularMarketPrice).Round(2),
			Volume: int64(q.RegularMarketVolume),
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	qc.cache.Set("yahoo", "quote", symbol, result)

	return result, nil
}

// GetQuoteJSON returns the quote serialized for a tool output.
func (qc *QuoteClient) GetQuoteJSON(symbol string) (string, error) {
	q, err := qc.GetQuote(symbol)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal quote for %s: %w", symbol, err)
	}
	return string(data), nil
}
