package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-search/models"
)

// Result is one rendered search result. Finance results carry the market
// bundle, sources and follow-up suggestions.
type Result struct {
	Title       string
	Snippet     string
	URL         string
	Data        *models.MarketData
	Sources     []string
	Suggestions []string
	Timestamp   string
}

// Backend runs one search. Fallback supplies the results shown when Search
// fails.
type Backend interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Fallback(query string) []Result
}

func newHTTPClient(httpClient *http.Client) *http.Client {
	if httpClient != nil {
		return httpClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// GenericBackend queries GET /api/search.
type GenericBackend struct {
	baseURL    string
	httpClient *http.Client
}

func NewGenericBackend(baseURL string, httpClient *http.Client) *GenericBackend {
	return &GenericBackend{baseURL: strings.TrimRight(baseURL, "/"), httpClient: newHTTPClient(httpClient)}
}

func (b *GenericBackend) Search(ctx context.Context, query string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var body models.SearchResponse
	if err := doJSON(b.httpClient, req, &body); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, Result{Title: r.Title, Snippet: r.Snippet, URL: r.URL})
	}
	return results, nil
}

// Fallback is an empty result list: the generic UI shows "no results".
func (b *GenericBackend) Fallback(string) []Result {
	return []Result{}
}

// FinanceBackend queries POST /api/finance/search and shapes the answer as a
// single analysis result.
type FinanceBackend struct {
	baseURL    string
	httpClient *http.Client
}

func NewFinanceBackend(baseURL string, httpClient *http.Client) *FinanceBackend {
	return &FinanceBackend{baseURL: strings.TrimRight(baseURL, "/"), httpClient: newHTTPClient(httpClient)}
}

func (b *FinanceBackend) Search(ctx context.Context, query string) ([]Result, error) {
	include := true
	payload, err := json.Marshal(models.FinanceSearchRequest{
		Query:       query,
		Context:     models.ContextSearch,
		IncludeData: &include,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/finance/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var body models.FinanceSearchResponse
	if err := doJSON(b.httpClient, req, &body); err != nil {
		return nil, err
	}

	return []Result{{
		Title:       "Financial Analysis: " + query,
		Snippet:     body.Response,
		Data:        body.Data,
		Sources:     body.Sources,
		Suggestions: body.Suggestions,
		Timestamp:   body.Timestamp,
	}}, nil
}

// Fallback explains that the finance API could not be reached.
func (b *FinanceBackend) Fallback(query string) []Result {
	return []Result{{
		Title: "Finance Search: " + query,
		Snippet: "Unable to connect to Finance GPT API. This is a fallback response for \"" + query + "\". " +
			"Please ensure the Finance API server is running on port 5001.",
		Sources:     []string{"Fallback Mode"},
		Suggestions: []string{"Check API server status", "Verify network connection"},
		Timestamp:   models.Timestamp(time.Now()),
	}}
}

func doJSON(httpClient *http.Client, req *http.Request, v interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
