package embedding

import (
	"fmt"
	"testing"

	"github.com/hyperjump/docintel/internal/config"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.EmbeddingConfig)
		wantType string
	}{
		{"random default", func(c *config.EmbeddingConfig) {}, "*embedding.RandomEmbedder"},
		{"mock", func(c *config.EmbeddingConfig) { c.Provider = "mock" }, "*embedding.MockEmbedder"},
		{"openai without key falls back", func(c *config.EmbeddingConfig) {
			c.Provider = "openai"
			c.OpenAI.APIKeyEnv = "DOCINTEL_TEST_UNSET_KEY"
		}, "*embedding.MockEmbedder"},
		{"onnx without model falls back", func(c *config.EmbeddingConfig) {
			c.Provider = "onnx"
			c.ModelPath = "/nonexistent/model.onnx"
		}, "*embedding.MockEmbedder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Embedding
			cfg.CacheSize = 0
			tt.mutate(&cfg)
			e, err := NewEmbedder(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer e.Close()
			if got := typeName(e); got != tt.wantType {
				t.Errorf("type = %s, want %s", got, tt.wantType)
			}
			if e.Dimensions() != cfg.Dimensions {
				t.Errorf("Dimensions() = %d, want %d", e.Dimensions(), cfg.Dimensions)
			}
		})
	}
}

func TestNewEmbedder_Cached(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = "mock"
	cfg.CacheSize = 16
	e, err := NewEmbedder(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected *CachedEmbedder, got %T", e)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
