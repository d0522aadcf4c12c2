package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance-search/finance"
	"finance-search/fixtures"
	"finance-search/identity"
	"finance-search/models"
	"finance-search/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverOptions struct {
	results   []models.SearchResult
	staticDir string
	limiter   *RateLimiter
	maxBody   int64
}

func newTestServer(t *testing.T, opts serverOptions) http.Handler {
	t.Helper()
	if opts.results == nil {
		opts.results = fixtures.SearchResults()
	}
	if opts.maxBody == 0 {
		opts.maxBody = 10 << 20
	}

	handler := NewHandler(search.NewInMemoryEngine(opts.results), "1.0.0", opts.staticDir)
	financeHandler := NewFinanceHandler(finance.NewService(nil, nil))
	authHandler := NewAuthHandler(identity.NewMockProvider())

	return NewRouter(handler, financeHandler, authHandler, opts.limiter, "http://localhost:3000", opts.maxBody).SetupRoutes()
}

func doRequest(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rr := doRequest(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	decodeBody(t, rr, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestSearch_SampleScenario(t *testing.T) {
	results := []models.SearchResult{
		{ID: 1, Title: "Sample Result 1", URL: "#", Snippet: "first"},
		{ID: 2, Title: "Sample Result 2", URL: "#", Snippet: "second"},
		{ID: 3, Title: "Market Overview", URL: "#", Snippet: "third"},
	}
	h := newTestServer(t, serverOptions{results: results})

	rr := doRequest(h, http.MethodGet, "/api/search?q=Sample", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body models.SearchResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, "Sample", body.Query)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "Sample Result 1", body.Results[0].Title)
	assert.Equal(t, "Sample Result 2", body.Results[1].Title)
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	for _, target := range []string{"/api/search", "/api/search?q="} {
		rr := doRequest(h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body models.SearchResponse
		decodeBody(t, rr, &body)
		assert.Equal(t, 3, body.Total)
		assert.Equal(t, fixtures.SearchResults(), body.Results)
	}

	rr := doRequest(h, http.MethodGet, "/api/search?q=nothing-matches", "")
	var body map[string]interface{}
	decodeBody(t, rr, &body)
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, []interface{}{}, body["results"])
}

func TestFinanceSearch_MockScenario(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rr := doRequest(h, http.MethodPost, "/api/finance/search",
		`{"query":"AAPL stock analysis","context":"search","includeData":true}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Query       string   `json:"query"`
		Response    string   `json:"response"`
		Timestamp   string   `json:"timestamp"`
		Sources     []string `json:"sources"`
		Suggestions []string `json:"suggestions"`
		Data        struct {
			Stocks []struct {
				Symbol string  `json:"symbol"`
				Price  float64 `json:"price"`
				Change string  `json:"change"`
			} `json:"stocks"`
		} `json:"data"`
	}
	decodeBody(t, rr, &body)

	assert.Equal(t, "AAPL stock analysis", body.Query)
	assert.NotEmpty(t, body.Response)
	require.NotEmpty(t, body.Data.Stocks)
	assert.Equal(t, "AAPL", body.Data.Stocks[0].Symbol)
	assert.InDelta(t, 175.50, body.Data.Stocks[0].Price, 0.001)
	assert.Len(t, body.Suggestions, 3)
	assert.NotEmpty(t, body.Sources)
}

func TestFinanceSearch_Validation(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	for _, payload := range []string{`{"query":""}`, `{"query":"   "}`, `{}`, ``} {
		rr := doRequest(h, http.MethodPost, "/api/finance/search", payload)
		require.Equal(t, http.StatusBadRequest, rr.Code, payload)

		var body ErrorResponse
		decodeBody(t, rr, &body)
		assert.Equal(t, "Query is required", body.Error)
		assert.Equal(t, "Please provide a search query", body.Message)
	}

	rr := doRequest(h, http.MethodPost, "/api/finance/search", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinanceSearch_BodyLimit(t *testing.T) {
	h := newTestServer(t, serverOptions{maxBody: 64})

	rr := doRequest(h, http.MethodPost, "/api/finance/search", `{"query":"`+strings.Repeat("x", 200)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestFinanceEndpoints(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		keys   []string
	}{
		{name: "stock analysis", method: http.MethodPost, target: "/api/finance/stock-analysis", body: `{"symbol":"msft"}`,
			status: http.StatusOK, keys: []string{"symbol", "analysisType", "analysis", "data", "timestamp"}},
		{name: "stock analysis without symbol", method: http.MethodPost, target: "/api/finance/stock-analysis", body: `{}`,
			status: http.StatusBadRequest, keys: []string{"error"}},
		{name: "market insights", method: http.MethodPost, target: "/api/finance/market-insights", body: `{"sector":"tech"}`,
			status: http.StatusOK, keys: []string{"market", "sector", "timeframe", "insights", "data", "timestamp"}},
		{name: "portfolio", method: http.MethodPost, target: "/api/finance/portfolio-analysis",
			body:   `{"portfolio":[{"symbol":"AAPL","shares":2},{"symbol":"MSFT","shares":1,"price":100}]}`,
			status: http.StatusOK, keys: []string{"portfolio", "analysis", "timestamp"}},
		{name: "portfolio not an array", method: http.MethodPost, target: "/api/finance/portfolio-analysis", body: `{"portfolio":{"symbol":"AAPL"}}`,
			status: http.StatusBadRequest, keys: []string{"error"}},
		{name: "portfolio missing", method: http.MethodPost, target: "/api/finance/portfolio-analysis", body: `{}`,
			status: http.StatusBadRequest, keys: []string{"error"}},
		{name: "economic indicators", method: http.MethodGet, target: "/api/finance/economic-indicators?indicators=GDP,CPI&region=EU",
			status: http.StatusOK, keys: []string{"indicators", "region", "data", "analysis", "timestamp"}},
		{name: "news sentiment", method: http.MethodPost, target: "/api/finance/news-sentiment", body: `{"query":"tech"}`,
			status: http.StatusOK, keys: []string{"query", "news", "sentiment", "timestamp"}},
		{name: "finance health", method: http.MethodGet, target: "/api/health",
			status: http.StatusOK, keys: []string{"status", "timestamp", "service"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(h, tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body map[string]interface{}
			decodeBody(t, rr, &body)
			for _, k := range tt.keys {
				assert.Contains(t, body, k)
			}
		})
	}
}

func TestEconomicIndicatorsQueryParsing(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rr := doRequest(h, http.MethodGet, "/api/finance/economic-indicators?indicators=GDP&indicators=CPI", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body models.EconomicIndicatorsResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, []string{"GDP", "CPI"}, body.Indicators)
	assert.Equal(t, "US", body.Region)
}

func TestAPINotFound(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	for _, target := range []string{"/api/unknown", "/api", "/api/finance/nope"} {
		rr := doRequest(h, http.MethodGet, target, "")
		require.Equal(t, http.StatusNotFound, rr.Code, target)

		var body ErrorResponse
		decodeBody(t, rr, &body)
		assert.Equal(t, "Not found", body.Error)
		assert.Equal(t, "API endpoint not found", body.Message)
	}

	// Wrong method on a known path.
	rr := doRequest(h, http.MethodGet, "/api/finance/search", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecoverReturnsGenericError(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("database exploded")
	}), RequestIDMiddleware, LoggingMiddleware, RecoverMiddleware)

	rr := doRequest(h, http.MethodGet, "/api/anything", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body ErrorResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.NotContains(t, rr.Body.String(), "database")
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/api/finance/search", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticServesFilesAndShell(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hi')"), 0o644))

	h := newTestServer(t, serverOptions{staticDir: dir})

	rr := doRequest(h, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "console.log")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))

	for _, target := range []string{"/", "/dashboard/settings", "/missing.css"} {
		rr = doRequest(h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rr.Code, target)
		assert.Contains(t, rr.Body.String(), "shell", target)
	}
}

func TestStaticWithoutDirectoryServesBuiltInShell(t *testing.T) {
	h := newTestServer(t, serverOptions{staticDir: filepath.Join(t.TempDir(), "missing")})

	rr := doRequest(h, http.MethodGet, "/anything", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<div id="root">`)
}

func TestAuthVerify(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rr := doRequest(h, http.MethodPost, "/api/auth/verify", `{"credential":""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var ok struct {
		User models.UserSession `json:"user"`
	}
	decodeBody(t, rr, &ok)
	assert.Equal(t, "demo-token", ok.User.Token)

	rr = doRequest(h, http.MethodPost, "/api/auth/verify", `{"credential":"garbage"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body ErrorResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, "Unauthorized", body.Error)
}
