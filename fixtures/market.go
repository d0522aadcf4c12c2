package fixtures

import (
	"strings"

	"finance-search/models"

	"github.com/shopspring/decimal"
)

// MarketData returns the fixed market bundle attached in mock mode.
func MarketData() *models.MarketData {
	return &models.MarketData{
		Stocks: []models.Stock{
			{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("175.50"), Change: "+1.2%"},
			{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: decimal.RequireFromString("2750.30"), Change: "-0.8%"},
			{Symbol: "MSFT", Name: "Microsoft Corporation", Price: decimal.RequireFromString("378.90"), Change: "+0.5%"},
		},
		Indices: []models.Index{
			{Name: "S&P 500", Value: decimal.RequireFromString("4485.30"), Change: "+0.3%"},
			{Name: "NASDAQ", Value: decimal.RequireFromString("13924.50"), Change: "-0.2%"},
			{Name: "DOW", Value: decimal.RequireFromString("34765.80"), Change: "+0.1%"},
		},
		Currencies: []models.Currency{
			{Pair: "USD/EUR", Rate: decimal.RequireFromString("0.85"), Change: "+0.1%"},
			{Pair: "USD/GBP", Rate: decimal.RequireFromString("0.73"), Change: "-0.05%"},
		},
	}
}

// Quote looks a symbol up in the fixture bundle. Unknown symbols get a
// deterministic synthetic price derived from the symbol length.
func Quote(symbol string) models.Stock {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range MarketData().Stocks {
		if s.Symbol == symbol {
			return s
		}
	}
	price := decimal.NewFromInt(1000).Add(decimal.RequireFromString("10.5").Mul(decimal.NewFromInt(int64(len(symbol)))))
	return models.Stock{Symbol: symbol, Price: price, Change: "+0.0%"}
}

var indicators = map[string]map[string]models.EconomicIndicator{
	"US": {
		"GDP":           {Name: "GDP", Value: "2.4%", Period: "Q2 annualized", Trend: "stable"},
		"CPI":           {Name: "CPI", Value: "3.2%", Period: "YoY", Trend: "falling"},
		"UNEMPLOYMENT":  {Name: "unemployment", Value: "3.8%", Period: "monthly", Trend: "stable"},
		"INTEREST_RATE": {Name: "interest_rate", Value: "5.25%", Period: "fed funds upper", Trend: "rising"},
	},
	"EU": {
		"GDP":           {Name: "GDP", Value: "0.5%", Period: "Q2 annualized", Trend: "falling"},
		"CPI":           {Name: "CPI", Value: "5.3%", Period: "YoY", Trend: "falling"},
		"UNEMPLOYMENT":  {Name: "unemployment", Value: "6.4%", Period: "monthly", Trend: "stable"},
		"INTEREST_RATE": {Name: "interest_rate", Value: "4.25%", Period: "main refinancing", Trend: "rising"},
	},
}

// EconomicIndicators returns fixture values for the named indicators. Unknown
// regions use US figures; unknown indicator names are reported as unavailable.
func EconomicIndicators(names []string, region string) []models.EconomicIndicator {
	table, ok := indicators[strings.ToUpper(region)]
	if !ok {
		table = indicators["US"]
	}
	out := make([]models.EconomicIndicator, 0, len(names))
	for _, name := range names {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
		if ind, ok := table[key]; ok {
			out = append(out, ind)
			continue
		}
		out = append(out, models.EconomicIndicator{Name: name, Value: "n/a", Trend: "unknown"})
	}
	return out
}

var headlines = map[string][]string{
	"reuters": {
		"Stocks rally as inflation cools and growth remains strong",
		"Central bank signals caution amid uncertain outlook",
	},
	"bloomberg": {
		"Tech shares gain on record earnings beat",
		"Bond yields rise as traders weigh recession risk",
	},
	"wsj": {
		"Investors rotate into defensive sectors after selloff",
		"Consumer spending shows resilient growth",
	},
}

// News returns the fixture headlines for the given sources. Unknown sources
// contribute nothing.
func News(sources []string) []models.NewsItem {
	var out []models.NewsItem
	for _, src := range sources {
		key := strings.ToLower(strings.TrimSpace(src))
		for _, h := range headlines[key] {
			out = append(out, models.NewsItem{Source: key, Headline: h, Published: "2024-01-15T14:30:00Z"})
		}
	}
	return out
}
