package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching what browser clients expect.
	decimal.MarshalJSONWithoutQuotes = true
}

type Stock struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Change string          `json:"change"` // signed percent, e.g. "+1.2%"
}

type Index struct {
	Name   string          `json:"name"`
	Value  decimal.Decimal `json:"value"`
	Change string          `json:"change"`
}

type Currency struct {
	Pair   string          `json:"pair"`
	Rate   decimal.Decimal `json:"rate"`
	Change string          `json:"change"`
}

// MarketData is the bundle attached to finance responses.
type MarketData struct {
	Stocks     []Stock    `json:"stocks"`
	Indices    []Index    `json:"indices"`
	Currencies []Currency `json:"currencies,omitempty"`
}

type EconomicIndicator struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Period string `json:"period"`
	Trend  string `json:"trend"`
}

type NewsItem struct {
	Source    string `json:"source"`
	Headline  string `json:"headline"`
	Published string `json:"published"`
}
