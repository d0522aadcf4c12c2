package loader

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
)

func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadResults(t *testing.T) {
	content := `id,title,url,snippet
1,Apple earnings preview,https://example.com/aapl,Quarterly results due Thursday
,Treasury yields climb,,Bond market update`
	path := writeTemp(t, "results_*.csv", content)

	results, err := LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Apple earnings preview" {
		t.Errorf("Expected title Apple earnings preview, got %s", results[0].Title)
	}
	if results[0].URL != "https://example.com/aapl" {
		t.Errorf("Expected url to be kept, got %s", results[0].URL)
	}
	if results[1].ID != 2 {
		t.Errorf("Expected positional id 2, got %d", results[1].ID)
	}
	if results[1].URL != "#" {
		t.Errorf("Expected default url '#', got %s", results[1].URL)
	}
}

func TestLoadResultsInvalidID(t *testing.T) {
	path := writeTemp(t, "results_*.csv", "abc,Broken row,#,x")

	if _, err := LoadResults(path); err == nil {
		t.Fatal("Expected error for non-numeric id")
	}
}

func TestLoadMarketData(t *testing.T) {
	content := `{
		"stocks": [{"symbol": "NVDA", "price": 480.25, "change": "+2.1%"}],
		"indices": [{"name": "S&P 500", "value": 4500.1, "change": "+0.4%"}]
	}`
	path := writeTemp(t, "market_*.json", content)

	data, err := LoadMarketData(path)
	if err != nil {
		t.Fatalf("LoadMarketData failed: %v", err)
	}

	if len(data.Stocks) != 1 || data.Stocks[0].Symbol != "NVDA" {
		t.Fatalf("Unexpected stocks: %+v", data.Stocks)
	}
	if !data.Stocks[0].Price.Equal(decimal.RequireFromString("480.25")) {
		t.Errorf("Expected price 480.25, got %s", data.Stocks[0].Price)
	}
	if len(data.Indices) != 1 {
		t.Errorf("Expected 1 index, got %d", len(data.Indices))
	}
}
