package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dyike/FinSightGo/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.FMPAPIKey = "test-key"
	cfg.CacheEnabled = false
	return cfg
}

func TestFetchRequestShape(t *testing.T) {
	var gotPaths []string
	var gotQueries []url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		gotQueries = append(gotQueries, r.URL.Query())
		fmt.Fprint(w, `[{"symbol":"AAPL"}]`)
	}))
	defer srv.Close()

	fc := NewFMPClient(testConfig(t)).WithBaseURL(srv.URL)

	for _, stmt := range Statements() {
		body, err := fc.Fetch(context.Background(), stmt, "AAPL", "quarter", 4)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", stmt, err)
		}
		if body != `[{"symbol":"AAPL"}]` {
			t.Fatalf("Fetch(%s): body not passed through verbatim: %q", stmt, body)
		}
	}

	if len(gotPaths) != len(Statements()) {
		t.Fatalf("expected %d requests, got %d", len(Statements()), len(gotPaths))
	}

	// Targets differ only in the statement path segment.
	for i, stmt := range Statements() {
		want := "/" + stmt.Path() + "/AAPL"
		if gotPaths[i] != want {
			t.Fatalf("statement %s: path %q, want %q", stmt, gotPaths[i], want)
		}
	}

	// All queries share an identical structure.
	for i, q := range gotQueries {
		if q.Get("period") != "quarter" || q.Get("limit") != "4" || q.Get("apikey") != "test-key" {
			t.Fatalf("request %d: unexpected query %v", i, q)
		}
	}
}

func TestFetchForwardsZeroLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	fc := NewFMPClient(testConfig(t)).WithBaseURL(srv.URL)
	if _, err := fc.Fetch(context.Background(), IncomeStatement, "AAPL", "annual", 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotLimit != "0" {
		t.Fatalf("limit 0 must be forwarded as-is, got %q", gotLimit)
	}
}

func TestFetchForwardsPeriodUnvalidated(t *testing.T) {
	var gotPeriod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPeriod = r.URL.Query().Get("period")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	fc := NewFMPClient(testConfig(t)).WithBaseURL(srv.URL)
	if _, err := fc.Fetch(context.Background(), FinancialRatios, "MSFT", "bogus-period", 2); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPeriod != "bogus-period" {
		t.Fatalf("period must be forwarded unmodified, got %q", gotPeriod)
	}
}

func TestFetchClassifiesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"Error Message":"Invalid API KEY"}`)
	}))
	defer srv.Close()

	fc := NewFMPClient(testConfig(t)).WithBaseURL(srv.URL)
	_, err := fc.Fetch(context.Background(), KeyMetrics, "AAPL", "annual", 1)
	if err == nil {
		t.Fatalf("expected error for HTTP 403")
	}

	var unavailable *DataUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *DataUnavailableError, got %T: %v", err, err)
	}
	if unavailable.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", unavailable.StatusCode)
	}
	if !strings.Contains(unavailable.Body, "Invalid API KEY") {
		t.Fatalf("provider body not preserved: %q", unavailable.Body)
	}
}

func TestFetchRejectsEmptyTicker(t *testing.T) {
	fc := NewFMPClient(testConfig(t))
	if _, err := fc.Fetch(context.Background(), BalanceSheet, "", "annual", 4); err == nil {
		t.Fatalf("expected error for empty ticker")
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	fc := NewFMPClient(testConfig(t)).WithBaseURL(srv.URL)
	if _, err := fc.Fetch(context.Background(), CashFlowStatement, "AAPL", "annual", 4); err == nil {
		t.Fatalf("expected transport error")
	}
}
