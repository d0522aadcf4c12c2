package providers

import (
	"context"

	"finance-search/fixtures"
	"finance-search/models"
)

// NarrativeProvider produces the free-text answer for a finance query.
type NarrativeProvider interface {
	Name() string
	Generate(ctx context.Context, key models.ContextKey, query string) (string, error)
}

// MockNarrative returns the canned narrative for the context key. It never
// fails.
type MockNarrative struct{}

func NewMockNarrative() *MockNarrative {
	return &MockNarrative{}
}

func (m *MockNarrative) Name() string { return "mock" }

func (m *MockNarrative) Generate(_ context.Context, key models.ContextKey, query string) (string, error) {
	return fixtures.Narrative(key, query), nil
}
