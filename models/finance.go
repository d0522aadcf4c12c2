package models

import "github.com/shopspring/decimal"

// ContextKey selects which canned narrative and system prompt to use.
type ContextKey string

const (
	ContextSearch   ContextKey = "search"
	ContextAnalysis ContextKey = "analysis"
	ContextAdvisory ContextKey = "advisory"
)

// Normalize maps unknown keys to ContextSearch.
func (c ContextKey) Normalize() ContextKey {
	switch c {
	case ContextSearch, ContextAnalysis, ContextAdvisory:
		return c
	default:
		return ContextSearch
	}
}

type FinanceSearchRequest struct {
	Query       string     `json:"query"`
	Context     ContextKey `json:"context"`
	IncludeData *bool      `json:"includeData"`
}

type FinanceSearchResponse struct {
	Query       string      `json:"query"`
	Response    string      `json:"response"`
	Data        *MarketData `json:"data"`
	Timestamp   string      `json:"timestamp"`
	Sources     []string    `json:"sources"`
	Suggestions []string    `json:"suggestions"`
}

type StockAnalysisRequest struct {
	Symbol       string `json:"symbol"`
	AnalysisType string `json:"analysisType"`
}

type StockAnalysisResponse struct {
	Symbol       string `json:"symbol"`
	AnalysisType string `json:"analysisType"`
	Analysis     string `json:"analysis"`
	Data         *Stock `json:"data"`
	Timestamp    string `json:"timestamp"`
}

type MarketInsightsRequest struct {
	Market    string `json:"market"`
	Sector    string `json:"sector"`
	Timeframe string `json:"timeframe"`
}

type MarketInsightsResponse struct {
	Market    string      `json:"market"`
	Sector    string      `json:"sector,omitempty"`
	Timeframe string      `json:"timeframe"`
	Insights  string      `json:"insights"`
	Data      *MarketData `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type Holding struct {
	Symbol string           `json:"symbol"`
	Shares decimal.Decimal  `json:"shares"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

type HoldingWeight struct {
	Symbol string          `json:"symbol"`
	Value  decimal.Decimal `json:"value"`
	Weight decimal.Decimal `json:"weight"` // percent of total value
}

type PortfolioAnalysis struct {
	AnalysisType string          `json:"analysisType"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	Holdings     []HoldingWeight `json:"holdings"`
	RiskLevel    string          `json:"riskLevel"`
	Summary      string          `json:"summary"`
}

type PortfolioAnalysisRequest struct {
	Portfolio    []Holding `json:"portfolio"`
	AnalysisType string    `json:"analysisType"`
}

type PortfolioAnalysisResponse struct {
	Portfolio []Holding          `json:"portfolio"`
	Analysis  *PortfolioAnalysis `json:"analysis"`
	Timestamp string             `json:"timestamp"`
}

type EconomicIndicatorsResponse struct {
	Indicators []string            `json:"indicators"`
	Region     string              `json:"region"`
	Data       []EconomicIndicator `json:"data"`
	Analysis   string              `json:"analysis"`
	Timestamp  string              `json:"timestamp"`
}

type NewsSentimentRequest struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources"`
}

type Sentiment struct {
	Label    string  `json:"label"` // bullish, bearish or neutral
	Score    float64 `json:"score"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
}

type NewsSentimentResponse struct {
	Query     string     `json:"query"`
	News      []NewsItem `json:"news"`
	Sentiment Sentiment  `json:"sentiment"`
	Timestamp string     `json:"timestamp"`
}
