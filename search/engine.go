package search

import (
	"finance-search/models"
	"fmt"
	"strings"
)

// SearchEngine matches queries against the search-result fixtures. An empty
// query matches every entry.
type SearchEngine interface {
	Search(query string) []models.SearchResult
	Close() error
}

type InMemoryEngine struct {
	results []models.SearchResult
}

func NewInMemoryEngine(results []models.SearchResult) *InMemoryEngine {
	return &InMemoryEngine{results: results}
}

// Search returns entries whose title contains query, case-insensitively, in
// fixture order.
func (e *InMemoryEngine) Search(query string) []models.SearchResult {
	results := []models.SearchResult{}
	q := strings.ToLower(query)
	for _, result := range e.results {
		if q == "" || strings.Contains(strings.ToLower(result.Title), q) {
			results = append(results, result)
		}
	}
	return results
}

func (e *InMemoryEngine) Close() error {
	return nil
}

// New builds the engine named by kind: "bleve" or "memory".
func New(kind, indexPath string, results []models.SearchResult) (SearchEngine, error) {
	switch kind {
	case "bleve":
		engine, err := NewBleveEngine(indexPath, results)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case "memory", "":
		return NewInMemoryEngine(results), nil
	default:
		return nil, fmt.Errorf("unknown search engine %q", kind)
	}
}
