package providers

import (
	"context"

	"finance-search/fixtures"
	"finance-search/models"
	"finance-search/observability"
)

// MarketDataProvider supplies the market bundle and single quotes.
type MarketDataProvider interface {
	Name() string
	Snapshot(ctx context.Context, query string) (*models.MarketData, error)
	Quote(ctx context.Context, symbol string) (*models.Stock, error)
}

// MockMarketData serves a fixed bundle. It never fails.
type MockMarketData struct {
	bundle *models.MarketData
}

// NewMockMarketData serves bundle, or the built-in fixture bundle when nil.
func NewMockMarketData(bundle *models.MarketData) *MockMarketData {
	if bundle == nil {
		bundle = fixtures.MarketData()
	}
	return &MockMarketData{bundle: bundle}
}

func (m *MockMarketData) Name() string { return "mock" }

func (m *MockMarketData) Snapshot(_ context.Context, _ string) (*models.MarketData, error) {
	return &models.MarketData{
		Stocks:     append([]models.Stock(nil), m.bundle.Stocks...),
		Indices:    append([]models.Index(nil), m.bundle.Indices...),
		Currencies: append([]models.Currency(nil), m.bundle.Currencies...),
	}, nil
}

func (m *MockMarketData) Quote(_ context.Context, symbol string) (*models.Stock, error) {
	for _, s := range m.bundle.Stocks {
		if equalSymbol(s.Symbol, symbol) {
			stock := s
			return &stock, nil
		}
	}
	stock := fixtures.Quote(symbol)
	return &stock, nil
}

// FallbackMarketData serves from primary and falls back on any error.
type FallbackMarketData struct {
	primary  MarketDataProvider
	fallback MarketDataProvider
}

func NewFallbackMarketData(primary, fallback MarketDataProvider) *FallbackMarketData {
	return &FallbackMarketData{primary: primary, fallback: fallback}
}

func (p *FallbackMarketData) Name() string {
	return p.primary.Name() + "+" + p.fallback.Name()
}

func (p *FallbackMarketData) Snapshot(ctx context.Context, query string) (*models.MarketData, error) {
	data, err := p.primary.Snapshot(ctx, query)
	if err == nil {
		return data, nil
	}
	observability.LoggerFromContext(ctx).Warn().Err(err).
		Str("provider", p.primary.Name()).
		Msg("market data provider failed, using fallback")
	return p.fallback.Snapshot(ctx, query)
}

func (p *FallbackMarketData) Quote(ctx context.Context, symbol string) (*models.Stock, error) {
	stock, err := p.primary.Quote(ctx, symbol)
	if err == nil {
		return stock, nil
	}
	observability.LoggerFromContext(ctx).Warn().Err(err).
		Str("provider", p.primary.Name()).
		Str("symbol", symbol).
		Msg("quote lookup failed, using fallback")
	return p.fallback.Quote(ctx, symbol)
}
