package providers

import (
	"context"
	"fmt"
	"strings"

	"finance-search/apperrors"
	"finance-search/fixtures"
	"finance-search/models"
	"finance-search/observability"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiNarrative generates narratives with Google's Gemini API.
type GeminiNarrative struct {
	client *genai.Client
	model  string
}

func NewGeminiNarrative(ctx context.Context, apiKey, model string) (*GeminiNarrative, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiNarrative{client: client, model: model}, nil
}

func (g *GeminiNarrative) Name() string { return "gemini" }

func (g *GeminiNarrative) Generate(ctx context.Context, key models.ContextKey, query string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "gemini.generate_content",
		attribute.String("llm.model", g.model),
		attribute.String("finance.context", string(key.Normalize())),
	)
	defer span.End()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(query), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fixtures.SystemPrompt(key), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   1000,
	})
	if err != nil {
		return "", apperrors.NewExternalError("gemini request failed", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.NewExternalError("gemini returned no content", nil)
	}
	return text, nil
}
