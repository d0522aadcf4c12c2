package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
)

// Config holds process configuration read from the environment. Missing API
// keys are not errors: they select the mock providers.
type Config struct {
	Host        string `env:"HOST,default=0.0.0.0"`
	Port        int    `env:"PORT,default=5001"`
	Environment string `env:"APP_ENV,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Version     string `env:"APP_VERSION,default=1.0.0"`
	ServiceName string `env:"OTEL_SERVICE_NAME,default=finance-search"`

	FrontendURL  string `env:"FRONTEND_URL,default=http://localhost:3000"`
	StaticDir    string `env:"STATIC_DIR,default=public"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES,default=10485760"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW,default=15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX,default=100"`

	SearchEngine       string `env:"SEARCH_ENGINE,default=memory"`
	SearchIndexPath    string `env:"SEARCH_INDEX_PATH"`
	SearchFixturesPath string `env:"SEARCH_FIXTURES_PATH"`
	MarketFixturesPath string `env:"MARKET_FIXTURES_PATH"`

	NarrativeProvider  string        `env:"NARRATIVE_PROVIDER,default=auto"`
	OpenAIModel        string        `env:"OPENAI_MODEL,default=gpt-4"`
	GeminiModel        string        `env:"GEMINI_MODEL,default=gemini-2.0-flash"`
	MarketDataProvider string        `env:"MARKET_DATA_PROVIDER,default=mock"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT,default=20s"`

	YahooQuotesPerSecond float64 `env:"YAHOO_QUOTES_PER_SECOND,default=5"`
	YahooQuoteBurst      int     `env:"YAHOO_QUOTE_BURST,default=8"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`
	SessionFile    string `env:"SESSION_FILE"`
	APIURL         string `env:"API_URL,default=http://localhost:5001"`

	OTELEnabled  bool   `env:"OTEL_ENABLED,default=false"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func validate(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = 15 * time.Minute
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 100
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}

	cfg.SearchEngine = strings.ToLower(strings.TrimSpace(cfg.SearchEngine))
	switch cfg.SearchEngine {
	case "memory", "bleve":
	default:
		return fmt.Errorf("SEARCH_ENGINE must be memory or bleve, got %q", cfg.SearchEngine)
	}

	cfg.NarrativeProvider = strings.ToLower(strings.TrimSpace(cfg.NarrativeProvider))
	switch cfg.NarrativeProvider {
	case "auto", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("NARRATIVE_PROVIDER must be auto, openai, gemini or mock, got %q", cfg.NarrativeProvider)
	}

	cfg.MarketDataProvider = strings.ToLower(strings.TrimSpace(cfg.MarketDataProvider))
	switch cfg.MarketDataProvider {
	case "mock", "yahoo":
	default:
		return fmt.Errorf("MARKET_DATA_PROVIDER must be mock or yahoo, got %q", cfg.MarketDataProvider)
	}

	if cfg.OTELEnabled && cfg.OTELEndpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is true")
	}
	return nil
}
