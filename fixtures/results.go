package fixtures

import "finance-search/models"

// SearchResults returns a fresh copy of the generic search fixture list.
func SearchResults() []models.SearchResult {
	return []models.SearchResult{
		{ID: 1, Title: "Sample Result 1", URL: "#", Snippet: "This is a sample search result"},
		{ID: 2, Title: "Sample Result 2", URL: "#", Snippet: "Another sample search result"},
		{ID: 3, Title: "Sample Result 3", URL: "#", Snippet: "Yet another search result"},
	}
}
