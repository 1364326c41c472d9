package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	name   string
	answer string
	err    error
	calls  int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(context.Context, string, []string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("What is the refund window?", []string{"Refunds take 14 days.", "Contact support."})
	want := "Answer the question using the context below.\n" +
		"If the answer is not in the context, say \"Not found in documents\".\n\n" +
		"Context:\nRefunds take 14 days.\n\nContact support.\n\n" +
		"Question:\nWhat is the refund window?"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_placeholderInQuery(t *testing.T) {
	got := BuildPrompt("what does %CONTEXT% mean?", []string{"ctx"})
	assert.Contains(t, got, "Question:\nwhat does %CONTEXT% mean?")
}

func TestGroupGenerator_fallsBack(t *testing.T) {
	first := &stubGenerator{name: "a", err: errors.New("rate limited")}
	second := &stubGenerator{name: "b", answer: "14 days"}
	third := &stubGenerator{name: "c", answer: "unused"}
	g := NewGroupGenerator(nil, first, second, third)

	answer, err := g.Generate(context.Background(), "q", []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, "14 days", answer)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, third.calls)
	assert.Equal(t, "a|b|c", g.Name())
}

func TestGroupGenerator_allFail(t *testing.T) {
	boom := errors.New("boom")
	g := NewGroupGenerator(nil, &stubGenerator{name: "a", err: errors.New("x")}, &stubGenerator{name: "b", err: boom})
	_, err := g.Generate(context.Background(), "q", nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewGroupGenerator_sizes(t *testing.T) {
	assert.Nil(t, NewGroupGenerator(nil))
	only := &stubGenerator{name: "solo"}
	assert.Same(t, only, NewGroupGenerator(nil, only))
}

func TestNewOpenAIGenerator_missingKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIOptions{})
	assert.ErrorIs(t, err, apperr.ErrGenerationUnavailable)
}

func TestNewGeminiGenerator_missingKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "  ", "")
	assert.ErrorIs(t, err, apperr.ErrGenerationUnavailable)
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var gotPrompt, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		gotModel = req.Model
		gotPrompt = req.Messages[0].Content
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "  Refunds take 14 days.\n"},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)

	g, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name())

	answer, err := g.Generate(context.Background(), "refund window?", []string{"Refunds take 14 days."})
	require.NoError(t, err)
	assert.Equal(t, "Refunds take 14 days.", answer)
	assert.Equal(t, "gpt-4o-mini", gotModel)
	assert.Equal(t, BuildPrompt("refund window?", []string{"Refunds take 14 days."}), gotPrompt)
}

func TestOpenAIGenerator_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	g, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "q", []string{"c"})
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	g, err := NewGenerator(ctx, config.GenerationConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, g, "disabled generation yields no generator")

	t.Setenv("DOCINTEL_TEST_EMPTY_KEY", "")
	_, err = NewGenerator(ctx, config.GenerationConfig{Provider: "openai", APIKeyEnv: "DOCINTEL_TEST_EMPTY_KEY"}, nil)
	assert.ErrorIs(t, err, apperr.ErrGenerationUnavailable)

	t.Setenv("DOCINTEL_TEST_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	g, err = NewGenerator(ctx, config.GenerationConfig{
		Provider:  "openai",
		APIKeyEnv: "DOCINTEL_TEST_KEY",
		Fallback:  []string{"gemini"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name(), "fallback without a key is skipped")

	_, err = NewGenerator(ctx, config.GenerationConfig{Provider: "llama"}, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidConfiguration)
}
