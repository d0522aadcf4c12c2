package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-search/apperrors"
	"finance-search/fixtures"
	"finance-search/models"
	"finance-search/observability"
	"finance-search/providers"
)

const suggestionCount = 3

var defaultIndicators = []string{"GDP", "CPI", "unemployment"}

// Service answers finance queries from a narrative provider and a market
// data provider. Upstream failures degrade to fixture content; only
// validation problems are returned as errors.
type Service struct {
	narrative providers.NarrativeProvider
	market    providers.MarketDataProvider
	mock      *providers.MockMarketData
	now       func() time.Time
}

func NewService(narrative providers.NarrativeProvider, market providers.MarketDataProvider) *Service {
	if narrative == nil {
		narrative = providers.NewMockNarrative()
	}
	mock := providers.NewMockMarketData(nil)
	if market == nil {
		market = mock
	}
	return &Service{
		narrative: narrative,
		market:    market,
		mock:      mock,
		now:       time.Now,
	}
}

func (s *Service) timestamp() string {
	return models.Timestamp(s.now())
}

// Search builds the answer for a free-text finance query.
func (s *Service) Search(ctx context.Context, req models.FinanceSearchRequest) (*models.FinanceSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.NewValidationError("Query is required").
			WithDetail("Please provide a search query")
	}

	observability.LoggerFromContext(ctx).Info().
		Str("query", req.Query).
		Str("context", string(req.Context)).
		Msg("finance search request")

	text := s.narrate(ctx, req.Context, req.Query)

	var data *models.MarketData
	if req.IncludeData == nil || *req.IncludeData {
		data = s.snapshot(ctx, req.Query)
	}

	return &models.FinanceSearchResponse{
		Query:       req.Query,
		Response:    text,
		Data:        data,
		Timestamp:   s.timestamp(),
		Sources:     ExtractSources(text),
		Suggestions: fixtures.Suggestions(suggestionCount),
	}, nil
}

// StockAnalysis quotes symbol and attaches an analysis narrative.
func (s *Service) StockAnalysis(ctx context.Context, req models.StockAnalysisRequest) (*models.StockAnalysisResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, apperrors.NewValidationError("Stock symbol is required").
			WithDetail("Please provide a stock symbol")
	}
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "comprehensive"
	}

	stock := s.quote(ctx, symbol)
	prompt := fmt.Sprintf("%s %s stock analysis (price %s, change %s)", symbol, analysisType, stock.Price.StringFixed(2), stock.Change)

	return &models.StockAnalysisResponse{
		Symbol:       symbol,
		AnalysisType: analysisType,
		Analysis:     s.narrate(ctx, models.ContextAnalysis, prompt),
		Data:         stock,
		Timestamp:    s.timestamp(),
	}, nil
}

// MarketInsights returns the market bundle with a narrative for the market
// and optional sector.
func (s *Service) MarketInsights(ctx context.Context, req models.MarketInsightsRequest) (*models.MarketInsightsResponse, error) {
	market := strings.TrimSpace(req.Market)
	if market == "" {
		market = "US"
	}
	timeframe := strings.TrimSpace(req.Timeframe)
	if timeframe == "" {
		timeframe = "1d"
	}

	prompt := fmt.Sprintf("%s market insights over %s", market, timeframe)
	if req.Sector != "" {
		prompt = fmt.Sprintf("%s %s sector insights over %s", market, req.Sector, timeframe)
	}

	return &models.MarketInsightsResponse{
		Market:    market,
		Sector:    req.Sector,
		Timeframe: timeframe,
		Insights:  s.narrate(ctx, models.ContextAnalysis, prompt),
		Data:      s.snapshot(ctx, prompt),
		Timestamp: s.timestamp(),
	}, nil
}

// EconomicIndicators reports fixture figures for the requested indicators.
func (s *Service) EconomicIndicators(_ context.Context, names []string, region string) *models.EconomicIndicatorsResponse {
	var cleaned []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append([]string(nil), defaultIndicators...)
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = "US"
	}

	data := fixtures.EconomicIndicators(cleaned, region)
	parts := make([]string, 0, len(data))
	for _, ind := range data {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", ind.Name, ind.Value, ind.Trend))
	}

	return &models.EconomicIndicatorsResponse{
		Indicators: cleaned,
		Region:     region,
		Data:       data,
		Analysis:   fmt.Sprintf("%s economic snapshot: %s.", region, strings.Join(parts, ", ")),
		Timestamp:  s.timestamp(),
	}
}

// NewsSentiment gathers headlines from sources and scores them.
func (s *Service) NewsSentiment(_ context.Context, req models.NewsSentimentRequest) *models.NewsSentimentResponse {
	sources := req.Sources
	if sources == nil {
		sources = []string{"reuters", "bloomberg", "wsj"}
	}
	news := fixtures.News(sources)
	if news == nil {
		news = []models.NewsItem{}
	}
	return &models.NewsSentimentResponse{
		Query:     req.Query,
		News:      news,
		Sentiment: ScoreSentiment(news),
		Timestamp: s.timestamp(),
	}
}

// narrate never fails: provider errors are logged and replaced by the
// canned narrative for key.
func (s *Service) narrate(ctx context.Context, key models.ContextKey, query string) string {
	text, err := s.narrative.Generate(ctx, key.Normalize(), query)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("provider", s.narrative.Name()).
			Msg("narrative generation failed, using canned response")
		return fixtures.Narrative(key, query)
	}
	return text
}

func (s *Service) snapshot(ctx context.Context, query string) *models.MarketData {
	data, err := s.market.Snapshot(ctx, query)
	if err != nil || data == nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("provider", s.market.Name()).
			Msg("market snapshot failed, using fixture bundle")
		data, _ = s.mock.Snapshot(ctx, query)
	}
	return data
}

func (s *Service) quote(ctx context.Context, symbol string) *models.Stock {
	stock, err := s.market.Quote(ctx, symbol)
	if err != nil || stock == nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("provider", s.market.Name()).
			Str("symbol", symbol).
			Msg("quote failed, using fixture quote")
		stock, _ = s.mock.Quote(ctx, symbol)
	}
	return stock
}

// ExtractSources returns the known source names mentioned in text, matched
// case-insensitively and reported in their canonical spelling and order. It
// returns the default source labels when none match.
func ExtractSources(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, src := range fixtures.KnownSources {
		if strings.Contains(lower, strings.ToLower(src)) {
			found = append(found, src)
		}
	}
	if len(found) == 0 {
		return append([]string(nil), fixtures.DefaultSources...)
	}
	return found
}
