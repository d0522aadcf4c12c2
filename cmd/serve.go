package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"finance-search/api"
	"finance-search/config"
	"finance-search/credentials"
	"finance-search/finance"
	"finance-search/fixtures"
	"finance-search/identity"
	"finance-search/loader"
	"finance-search/models"
	"finance-search/observability"
	"finance-search/providers"
	"finance-search/search"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search and Finance GPT API server",
	Long: `
The serve command starts one HTTP listener that provides:
- GET  /health and GET /api/search for the generic search demo
- POST /api/finance/* and GET /api/health for the Finance GPT API
- POST /api/auth/verify for sign-in credentials
- the single-page client from STATIC_DIR on every other path

Example:
  finance-search serve               # Listen on $HOST:$PORT (default 0.0.0.0:5001)
  finance-search serve --port 3001   # Override the port
`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEnabled {
		shutdown, err := observability.Setup(ctx, cfg.ServiceName, cfg.Version, cfg.OTELEndpoint)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to flush traces")
			}
		}()
	}

	handler, cleanup, err := buildHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// buildHandler wires every component named by cfg into the routed handler.
// cleanup releases the search index and the redis client.
func buildHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	results := fixtures.SearchResults()
	if cfg.SearchFixturesPath != "" {
		loaded, err := loader.LoadResults(cfg.SearchFixturesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load search fixtures: %w", err)
		}
		results = loaded
		log.Info().Int("count", len(results)).Str("path", cfg.SearchFixturesPath).Msg("loaded search fixtures")
	}

	var bundle *models.MarketData
	if cfg.MarketFixturesPath != "" {
		loaded, err := loader.LoadMarketData(cfg.MarketFixturesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load market fixtures: %w", err)
		}
		bundle = loaded
	}

	engine, err := search.New(cfg.SearchEngine, cfg.SearchIndexPath, results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}

	narrative, err := providers.NewNarrativeProvider(ctx, cfg, credentials.NewEnvProvider())
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	market, err := providers.NewMarketDataProvider(cfg, bundle)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}

	idp, err := newIdentityProvider(ctx, cfg)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, rate limiting will fail open until it recovers")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("using redis rate limit store")
		}
	}

	router := api.NewRouter(
		api.NewHandler(engine, cfg.Version, cfg.StaticDir),
		api.NewFinanceHandler(finance.NewService(narrative, market)),
		api.NewAuthHandler(idp),
		api.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, redisClient),
		cfg.FrontendURL,
		cfg.MaxBodyBytes,
	)

	cleanup := func() {
		if err := engine.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close search engine")
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close redis client")
			}
		}
	}
	return router.SetupRoutes(), cleanup, nil
}

// newIdentityProvider verifies Google credentials when a client id is
// configured and accepts unverified demo tokens otherwise.
func newIdentityProvider(ctx context.Context, cfg *config.Config) (identity.IdentityProvider, error) {
	if cfg.GoogleClientID == "" {
		return identity.NewMockProvider(), nil
	}
	p, err := identity.NewGoogleProvider(ctx, cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize google identity provider: %w", err)
	}
	return p, nil
}
