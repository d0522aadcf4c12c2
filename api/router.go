package api

import (
	"net/http"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handler        *Handler
	financeHandler *FinanceHandler
	authHandler    *AuthHandler

	limiter      *RateLimiter
	frontendURL  string
	maxBodyBytes int64
}

// NewRouter creates a new router. authHandler and limiter may be nil.
func NewRouter(
	handler *Handler,
	financeHandler *FinanceHandler,
	authHandler *AuthHandler,
	limiter *RateLimiter,
	frontendURL string,
	maxBodyBytes int64,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handler:        handler,
		financeHandler: financeHandler,
		authHandler:    authHandler,
		limiter:        limiter,
		frontendURL:    frontendURL,
		maxBodyBytes:   maxBodyBytes,
	}
}

// SetupRoutes registers every route and returns the wrapped handler.
func (r *Router) SetupRoutes() http.Handler {
	// Generic search surface
	r.mux.HandleFunc("GET /health", r.handler.Health)
	r.mux.HandleFunc("GET /api/search", r.handler.Search)

	// Finance surface
	r.mux.HandleFunc("GET /api/health", r.financeHandler.Health)
	r.mux.HandleFunc("POST /api/finance/search", r.financeHandler.Search)
	r.mux.HandleFunc("POST /api/finance/stock-analysis", r.financeHandler.StockAnalysis)
	r.mux.HandleFunc("POST /api/finance/market-insights", r.financeHandler.MarketInsights)
	r.mux.HandleFunc("POST /api/finance/portfolio-analysis", r.financeHandler.PortfolioAnalysis)
	r.mux.HandleFunc("GET /api/finance/economic-indicators", r.financeHandler.EconomicIndicators)
	r.mux.HandleFunc("POST /api/finance/news-sentiment", r.financeHandler.NewsSentiment)

	if r.authHandler != nil {
		r.mux.HandleFunc("POST /api/auth/verify", r.authHandler.Verify)
	}

	r.mux.HandleFunc("/api", notFound)
	r.mux.HandleFunc("/api/", notFound)
	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			notFound(w, req)
			return
		}
		r.handler.Static(w, req)
	})

	middlewares := []Middleware{
		RequestIDMiddleware,
		LoggingMiddleware,
		RecoverMiddleware,
		CORSMiddleware(r.frontendURL),
	}
	if r.limiter != nil {
		middlewares = append(middlewares, r.limiter.Middleware)
	}
	middlewares = append(middlewares, BodyLimitMiddleware(r.maxBodyBytes))

	return Chain(r.mux, middlewares...)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Not found", "API endpoint not found")
}
