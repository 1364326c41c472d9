package embedding

import (
	"os"
	"time"

	"github.com/hyperjump/docintel/internal/config"
	"go.uber.org/zap"
)

// NewEmbedder builds the embedder selected by cfg.Provider and wraps it in a cache when
// cfg.CacheSize is positive. When the onnx or openai provider cannot be constructed it logs a
// warning and falls back to the deterministic mock embedder.
func NewEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Embedder
	switch cfg.Provider {
	case "mock":
		base = NewMockEmbedder(cfg.Dimensions)
	case "onnx":
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embedder", zap.String("model", cfg.ModelPath), zap.Error(err))
			base = NewMockEmbedder(cfg.Dimensions)
		} else {
			base = onnx
		}
	case "openai":
		oa, err := NewOpenAIEmbedder(OpenAIOptions{
			APIKey:      os.Getenv(cfg.OpenAI.APIKeyEnv),
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Dimensions:  cfg.Dimensions,
			BatchSize:   cfg.OpenAI.BatchSize,
			Concurrency: cfg.OpenAI.Concurrency,
			Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Warn("OpenAI embedder unavailable, using mock embedder", zap.String("api_key_env", cfg.OpenAI.APIKeyEnv), zap.Error(err))
			base = NewMockEmbedder(cfg.Dimensions)
		} else {
			base = oa
		}
	default:
		base = NewRandomEmbedder(cfg.Dimensions, cfg.Seed)
	}

	if cfg.CacheSize <= 0 {
		return base, nil
	}
	cached, err := NewCachedEmbedder(base, cfg.CacheSize)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return cached, nil
}
