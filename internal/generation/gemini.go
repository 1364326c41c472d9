package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docintel/internal/apperr"
	"google.golang.org/genai"
)

// GeminiGenerator answers through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator. An empty API key yields apperr.ErrGenerationUnavailable.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key not set", apperr.ErrGenerationUnavailable)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Name returns the provider name.
func (g *GeminiGenerator) Name() string {
	return "gemini"
}

// Generate sends the rendered prompt and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: BuildPrompt(query, contexts)}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("Gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: Gemini returned an empty answer", apperr.ErrGenerationUnavailable)
	}
	return text, nil
}
