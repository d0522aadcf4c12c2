package providers

import (
	"context"
	"fmt"

	"finance-search/config"
	"finance-search/credentials"
	"finance-search/models"

	"github.com/rs/zerolog/log"
)

// NewNarrativeProvider selects the narrative implementation from cfg. In
// auto mode the first configured API key wins and no key means mock.
func NewNarrativeProvider(ctx context.Context, cfg *config.Config, creds credentials.Provider) (NarrativeProvider, error) {
	openAIKey := credentials.Optional(creds, credentials.OpenAIAPIKey)
	geminiKey := credentials.Optional(creds, credentials.GeminiAPIKey)

	kind := cfg.NarrativeProvider
	if kind == "auto" {
		switch {
		case openAIKey != "":
			kind = "openai"
		case geminiKey != "":
			kind = "gemini"
		default:
			kind = "mock"
		}
	}

	switch kind {
	case "openai":
		p, err := NewOpenAINarrative(openAIKey, cfg.OpenAIModel, "", cfg.ProviderTimeout)
		if err != nil {
			return nil, fmt.Errorf("openai narrative provider: %w", err)
		}
		log.Info().Str("model", cfg.OpenAIModel).Msg("using OpenAI narrative provider")
		return p, nil
	case "gemini":
		p, err := NewGeminiNarrative(ctx, geminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini narrative provider: %w", err)
		}
		log.Info().Str("model", cfg.GeminiModel).Msg("using Gemini narrative provider")
		return p, nil
	case "mock":
		log.Info().Msg("no LLM API key configured, using mock narratives")
		return NewMockNarrative(), nil
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", kind)
	}
}

// NewMarketDataProvider selects the market data implementation. bundle
// overrides the built-in fixtures for the mock, which is also the fallback
// behind the live provider.
func NewMarketDataProvider(cfg *config.Config, bundle *models.MarketData) (MarketDataProvider, error) {
	mock := NewMockMarketData(bundle)
	switch cfg.MarketDataProvider {
	case "mock", "":
		return mock, nil
	case "yahoo":
		log.Info().Msg("using Yahoo Finance market data with mock fallback")
		return NewFallbackMarketData(NewYahooMarketData(nil, WithQuoteRate(cfg.YahooQuotesPerSecond, cfg.YahooQuoteBurst)), mock), nil
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.MarketDataProvider)
	}
}
