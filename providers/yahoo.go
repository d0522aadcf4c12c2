package providers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"finance-search/apperrors"
	"finance-search/models"
	"finance-search/observability"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// QuoteFetcher fetches one Yahoo Finance quote.
type QuoteFetcher func(symbol string) (*finance.Quote, error)

type namedSymbol struct {
	symbol string
	name   string
}

var (
	defaultWatchlist = []string{"AAPL", "GOOGL", "MSFT"}
	defaultIndices   = []namedSymbol{
		{symbol: "^GSPC", name: "S&P 500"},
		{symbol: "^IXIC", name: "NASDAQ"},
		{symbol: "^DJI", name: "DOW"},
	}
	defaultCurrencies = []namedSymbol{
		{symbol: "EUR=X", name: "USD/EUR"},
		{symbol: "GBP=X", name: "USD/GBP"},
	}

	tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
)

// YahooMarketData reads live quotes through finance-go. Every upstream
// call waits on a shared limiter.
type YahooMarketData struct {
	fetch   QuoteFetcher
	limiter *rate.Limiter
}

type YahooOption func(*YahooMarketData)

// WithQuoteRate throttles upstream quote calls to perSecond with the given
// burst. Zero or negative perSecond leaves calls unthrottled.
func WithQuoteRate(perSecond float64, burst int) YahooOption {
	return func(y *YahooMarketData) {
		if perSecond <= 0 {
			y.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		y.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewYahooMarketData uses fetch, or finance-go's quote.Get when nil.
func NewYahooMarketData(fetch QuoteFetcher, opts ...YahooOption) *YahooMarketData {
	if fetch == nil {
		fetch = quote.Get
	}
	y := &YahooMarketData{fetch: fetch, limiter: rate.NewLimiter(rate.Inf, 0)}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *YahooMarketData) Name() string { return "yahoo" }

// Snapshot quotes the tickers mentioned in query, or the default watchlist
// when none resolve, plus the major indices and currency pairs.
func (y *YahooMarketData) Snapshot(ctx context.Context, query string) (*models.MarketData, error) {
	ctx, span := observability.StartSpan(ctx, "yahoo.snapshot")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)
	data := &models.MarketData{}

	for _, symbol := range MentionedTickers(query) {
		stock, err := y.Quote(ctx, symbol)
		if err != nil {
			logger.Debug().Err(err).Str("symbol", symbol).Msg("skipping unresolved ticker")
			continue
		}
		data.Stocks = append(data.Stocks, *stock)
	}
	if len(data.Stocks) == 0 {
		for _, symbol := range defaultWatchlist {
			stock, err := y.Quote(ctx, symbol)
			if err != nil {
				return nil, err
			}
			data.Stocks = append(data.Stocks, *stock)
		}
	}

	for _, idx := range defaultIndices {
		q, err := y.get(ctx, idx.symbol)
		if err != nil {
			return nil, err
		}
		data.Indices = append(data.Indices, models.Index{
			Name:   idx.name,
			Value:  decimal.NewFromFloat(q.RegularMarketPrice).Round(2),
			Change: formatChange(q.RegularMarketChangePercent),
		})
	}

	for _, pair := range defaultCurrencies {
		q, err := y.get(ctx, pair.symbol)
		if err != nil {
			return nil, err
		}
		data.Currencies = append(data.Currencies, models.Currency{
			Pair:   pair.name,
			Rate:   decimal.NewFromFloat(q.RegularMarketPrice).Round(4),
			Change: formatChange(q.RegularMarketChangePercent),
		})
	}

	span.SetAttributes(attribute.Int("market.stocks", len(data.Stocks)))
	return data, nil
}

func (y *YahooMarketData) Quote(ctx context.Context, symbol string) (*models.Stock, error) {
	q, err := y.get(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, err
	}
	return &models.Stock{
		Symbol: q.Symbol,
		Name:   q.ShortName,
		Price:  decimal.NewFromFloat(q.RegularMarketPrice).Round(2),
		Change: formatChange(q.RegularMarketChangePercent),
	}, nil
}

func (y *YahooMarketData) get(ctx context.Context, symbol string) (*finance.Quote, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for yahoo quote slot: %w", err)
	}
	q, err := y.fetch(symbol)
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("yahoo quote for %s failed", symbol), err)
	}
	if q == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no quote for %s", symbol))
	}
	return q, nil
}

// MentionedTickers returns the distinct upper-case 2-5 letter words in query,
// in order of appearance.
func MentionedTickers(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range tickerPattern.FindAllString(query, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func formatChange(percent float64) string {
	return fmt.Sprintf("%+.2f%%", percent)
}

func equalSymbol(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
