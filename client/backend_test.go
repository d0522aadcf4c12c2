package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"finance-search/fixtures"
	"finance-search/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericBackend_Search(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "apple pie", r.URL.Query().Get("q"))

		_ = json.NewEncoder(w).Encode(models.SearchResponse{
			Query:   "apple pie",
			Results: fixtures.SearchResults(),
			Total:   3,
		})
	}))
	defer srv.Close()

	results, err := NewGenericBackend(srv.URL+"/", nil).Search(context.Background(), "apple pie")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Sample Result 1", results[0].Title)
	assert.Equal(t, "This is a sample search result", results[0].Snippet)
	assert.Equal(t, "#", results[0].URL)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenericBackend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewGenericBackend(srv.URL, nil)
	_, err := b.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
	assert.Empty(t, b.Fallback("x"))
	assert.NotNil(t, b.Fallback("x"))
}

func TestFinanceBackend_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/finance/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.FinanceSearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AAPL outlook", req.Query)
		assert.Equal(t, models.ContextSearch, req.Context)
		if assert.NotNil(t, req.IncludeData) {
			assert.True(t, *req.IncludeData)
		}

		_ = json.NewEncoder(w).Encode(models.FinanceSearchResponse{
			Query:       req.Query,
			Response:    "Apple looks steady.",
			Data:        fixtures.MarketData(),
			Timestamp:   "2024-01-01T00:00:00.000Z",
			Sources:     []string{"Yahoo Finance"},
			Suggestions: []string{"What about MSFT?"},
		})
	}))
	defer srv.Close()

	results, err := NewFinanceBackend(srv.URL, nil).Search(context.Background(), "AAPL outlook")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "Financial Analysis: AAPL outlook", r.Title)
	assert.Equal(t, "Apple looks steady.", r.Snippet)
	require.NotNil(t, r.Data)
	assert.Len(t, r.Data.Stocks, 3)
	assert.Equal(t, []string{"Yahoo Finance"}, r.Sources)
	assert.Equal(t, []string{"What about MSFT?"}, r.Suggestions)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", r.Timestamp)
}

func TestFinanceBackend_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	si := New(NewFinanceBackend(srv.URL, nil))
	defer si.Close()

	si.SetQuery("tesla")
	si.Click()
	si.Wait()

	st := si.State()
	assert.False(t, st.IsLoading)
	require.Len(t, st.Results, 1)

	r := st.Results[0]
	assert.Equal(t, "Finance Search: tesla", r.Title)
	assert.Contains(t, r.Snippet, `fallback response for "tesla"`)
	assert.Contains(t, r.Snippet, "port 5001")
	assert.Equal(t, []string{"Fallback Mode"}, r.Sources)
	assert.Equal(t, []string{"Check API server status", "Verify network connection"}, r.Suggestions)
	assert.NotEmpty(t, r.Timestamp)
}

func TestPresentation_NewBackend(t *testing.T) {
	assert.IsType(t, &GenericBackend{}, GenericPresentation.NewBackend("http://x", nil))
	assert.IsType(t, &FinanceBackend{}, FinancePresentation.NewBackend("http://x", nil))
	assert.Equal(t, ModeGeneric, PresentationFor(ModeGeneric).Mode)
	assert.Equal(t, ModeFinance, PresentationFor("anything").Mode)
}

func TestPresentation_Render(t *testing.T) {
	p := FinancePresentation

	welcome := p.Render(State{})
	assert.Contains(t, welcome, "Finance Search Tool with AI")
	assert.Contains(t, welcome, "Stock Analysis: analyze AAPL stock performance")

	warned := p.Render(State{ShowEmptyWarning: true})
	assert.True(t, strings.HasPrefix(warned, "! Please enter a search query to get started"))

	assert.Equal(t, "Searching with AI...\n", p.Render(State{IsLoading: true, HasSearched: true}))

	empty := p.Render(State{Query: "zzz", HasSearched: true})
	assert.Contains(t, empty, "No results found")
	assert.Contains(t, empty, `check your spelling for "zzz"`)

	one := p.Render(State{Query: "aapl", HasSearched: true, Results: []Result{{
		Title:       "Financial Analysis: aapl",
		Snippet:     "Looks good.",
		Data:        fixtures.MarketData(),
		Sources:     []string{"Yahoo Finance", "Bloomberg"},
		Suggestions: []string{"a", "b"},
	}}})
	assert.Contains(t, one, `1 result found for "aapl" • Generated with AI assistance`)
	assert.Contains(t, one, "Stocks: AAPL:")
	assert.Contains(t, one, "Indices: S&P 500:")
	assert.Contains(t, one, "Sources: Yahoo Finance, Bloomberg")
	assert.Contains(t, one, "Related searches: a | b")

	many := GenericPresentation.Render(State{Query: "sample", HasSearched: true, Results: []Result{{Title: "A"}, {Title: "B"}}})
	assert.Contains(t, many, `2 results found for "sample"`)
	assert.NotContains(t, many, "Sources:")
}
