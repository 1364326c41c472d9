package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/docintel/internal/apperr"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOptions configures an OpenAIGenerator.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator answers through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator. An empty API key yields apperr.ErrGenerationUnavailable.
func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", apperr.ErrGenerationUnavailable)
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: opts.Model}, nil
}

// Name returns the provider name.
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate sends the rendered prompt as a single user message and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(query, contexts)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI chat request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: OpenAI returned no choices", apperr.ErrGenerationUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
