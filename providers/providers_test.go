package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-search/apperrors"
	"finance-search/config"
	"finance-search/credentials"
	"finance-search/fixtures"
	"finance-search/models"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockNarrative(t *testing.T) {
	p := NewMockNarrative()

	text, err := p.Generate(context.Background(), models.ContextAnalysis, "TSLA")
	require.NoError(t, err)
	assert.Equal(t, fixtures.Narrative(models.ContextAnalysis, "TSLA"), text)
	assert.Contains(t, text, `Financial Analysis for "TSLA"`)
}

func TestOpenAINarrative_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Reuters reports gains."}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAINarrative("sk-test", "", srv.URL, time.Second)
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), models.ContextAdvisory, "retirement")
	require.NoError(t, err)
	assert.Equal(t, "Reuters reports gains.", text)

	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.InDelta(t, 0.3, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, fixtures.SystemPrompt(models.ContextAdvisory), got.Messages[0].Content)
	assert.Equal(t, "retirement", got.Messages[1].Content)
}

func TestOpenAINarrative_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`},
		{name: "bad json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewOpenAINarrative("sk-test", "gpt-4", srv.URL, time.Second)
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), models.ContextSearch, "q")
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrorTypeExternal))
		})
	}
}

func TestNewOpenAINarrative_RequiresKey(t *testing.T) {
	_, err := NewOpenAINarrative("", "", "", 0)
	assert.Error(t, err)
}

func TestMockMarketData(t *testing.T) {
	p := NewMockMarketData(nil)

	data, err := p.Snapshot(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, fixtures.MarketData(), data)

	// Snapshots are copies.
	data.Stocks[0].Symbol = "MUTATED"
	again, _ := p.Snapshot(context.Background(), "")
	assert.Equal(t, "AAPL", again.Stocks[0].Symbol)

	stock, err := p.Quote(context.Background(), "msft")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", stock.Symbol)

	stock, err = p.Quote(context.Background(), "ab")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1021").Equal(stock.Price))
}

func TestMockMarketData_CustomBundle(t *testing.T) {
	bundle := &models.MarketData{Stocks: []models.Stock{{Symbol: "NVDA", Price: decimal.NewFromInt(900), Change: "+3.0%"}}}
	p := NewMockMarketData(bundle)

	stock, err := p.Quote(context.Background(), "nvda")
	require.NoError(t, err)
	assert.Equal(t, "+3.0%", stock.Change)
}

type brokenMarket struct{}

func (brokenMarket) Name() string { return "broken" }
func (brokenMarket) Snapshot(context.Context, string) (*models.MarketData, error) {
	return nil, errors.New("unavailable")
}
func (brokenMarket) Quote(context.Context, string) (*models.Stock, error) {
	return nil, errors.New("unavailable")
}

func TestFallbackMarketData(t *testing.T) {
	p := NewFallbackMarketData(brokenMarket{}, NewMockMarketData(nil))
	assert.Equal(t, "broken+mock", p.Name())

	data, err := p.Snapshot(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, data.Stocks, 3)

	stock, err := p.Quote(context.Background(), "GOOGL")
	require.NoError(t, err)
	assert.Equal(t, "-0.8%", stock.Change)
}

func stubFetcher(quotes map[string]*finance.Quote) QuoteFetcher {
	return func(symbol string) (*finance.Quote, error) {
		q, ok := quotes[symbol]
		if !ok {
			return nil, nil
		}
		return q, nil
	}
}

func allDefaultQuotes() map[string]*finance.Quote {
	quotes := map[string]*finance.Quote{}
	for _, s := range []string{"AAPL", "GOOGL", "MSFT", "^GSPC", "^IXIC", "^DJI", "EUR=X", "GBP=X"} {
		q := &finance.Quote{}
		q.Symbol = s
		q.ShortName = s + " name"
		q.RegularMarketPrice = 100.456
		q.RegularMarketChangePercent = 1.2
		quotes[s] = q
	}
	return quotes
}

func TestYahooMarketData_Quote(t *testing.T) {
	p := NewYahooMarketData(stubFetcher(allDefaultQuotes()))

	stock, err := p.Quote(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stock.Symbol)
	assert.Equal(t, "AAPL name", stock.Name)
	assert.True(t, decimal.RequireFromString("100.46").Equal(stock.Price))
	assert.Equal(t, "+1.20%", stock.Change)

	_, err = p.Quote(context.Background(), "NOPE")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestYahooMarketData_Snapshot(t *testing.T) {
	quotes := allDefaultQuotes()
	tsla := &finance.Quote{}
	tsla.Symbol = "TSLA"
	tsla.RegularMarketPrice = 250
	tsla.RegularMarketChangePercent = -2.5
	quotes["TSLA"] = tsla

	p := NewYahooMarketData(stubFetcher(quotes))

	data, err := p.Snapshot(context.Background(), "compare TSLA with ETF flows")
	require.NoError(t, err)
	require.Len(t, data.Stocks, 1)
	assert.Equal(t, "TSLA", data.Stocks[0].Symbol)
	assert.Equal(t, "-2.50%", data.Stocks[0].Change)
	assert.Len(t, data.Indices, 3)
	assert.Equal(t, "S&P 500", data.Indices[0].Name)
	require.Len(t, data.Currencies, 2)
	assert.Equal(t, "USD/EUR", data.Currencies[0].Pair)

	data, err = p.Snapshot(context.Background(), "how are markets doing")
	require.NoError(t, err)
	assert.Len(t, data.Stocks, 3)
}

func TestYahooMarketData_UpstreamError(t *testing.T) {
	p := NewYahooMarketData(func(string) (*finance.Quote, error) {
		return nil, errors.New("rate limited")
	})

	_, err := p.Snapshot(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeExternal))
}

func TestMentionedTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, MentionedTickers("AAPL vs MSFT, and AAPL again"))
	assert.Empty(t, MentionedTickers("no tickers here"))
}

func TestNewNarrativeProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		kind  string
		creds map[string]string
		want  string
	}{
		{name: "auto without keys", kind: "auto", want: "mock"},
		{name: "auto with openai", kind: "auto", creds: map[string]string{credentials.OpenAIAPIKey: "sk"}, want: "openai"},
		{name: "explicit mock", kind: "mock", creds: map[string]string{credentials.OpenAIAPIKey: "sk"}, want: "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{NarrativeProvider: tt.kind, OpenAIModel: "gpt-4", ProviderTimeout: time.Second}
			p, err := NewNarrativeProvider(ctx, cfg, credentials.NewStaticProvider(tt.creds))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}

	_, err := NewNarrativeProvider(ctx, &config.Config{NarrativeProvider: "openai"}, credentials.NewStaticProvider(nil))
	assert.Error(t, err)
}

func TestNewMarketDataProvider(t *testing.T) {
	p, err := NewMarketDataProvider(&config.Config{MarketDataProvider: "mock"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	p, err = NewMarketDataProvider(&config.Config{MarketDataProvider: "yahoo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "yahoo+mock", p.Name())

	_, err = NewMarketDataProvider(&config.Config{MarketDataProvider: "bloomberg"}, nil)
	assert.Error(t, err)
}

func TestYahooMarketData_QuoteRate(t *testing.T) {
	var calls int
	fetch := stubFetcher(allDefaultQuotes())
	p := NewYahooMarketData(func(s string) (*finance.Quote, error) {
		calls++
		return fetch(s)
	}, WithQuoteRate(0.001, 1))

	_, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	// The next slot is far beyond the deadline, so the limiter gives up
	// without calling upstream.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Quote(ctx, "MSFT")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	unthrottled := NewYahooMarketData(fetch, WithQuoteRate(0, 0))
	for i := 0; i < 20; i++ {
		_, err := unthrottled.Quote(context.Background(), "AAPL")
		require.NoError(t, err)
	}
}
