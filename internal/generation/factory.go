package generation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/config"
	"go.uber.org/zap"
)

// NewGenerator builds the configured provider followed by its fallbacks. It returns (nil, nil)
// when generation is disabled. Fallback providers use their default model and key variable;
// a fallback whose key is missing is skipped with a warning.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (Generator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	primary, err := newProvider(ctx, cfg.Provider, cfg)
	if err != nil {
		return nil, err
	}
	items := []Generator{primary}
	for _, name := range cfg.Fallback {
		fb := config.GenerationConfig{
			Provider:    name,
			Model:       config.DefaultGenerationModel(name),
			APIKeyEnv:   config.DefaultGenerationKeyEnv(name),
			TimeoutSecs: cfg.TimeoutSecs,
		}
		g, err := newProvider(ctx, name, fb)
		if errors.Is(err, apperr.ErrGenerationUnavailable) {
			logger.Warn("fallback generator unavailable", zap.String("provider", name), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return NewGroupGenerator(logger, items...), nil
}

func newProvider(ctx context.Context, name string, cfg config.GenerationConfig) (Generator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	switch name {
	case "openai":
		return NewOpenAIGenerator(OpenAIOptions{
			APIKey:  key,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
	case "gemini":
		return NewGeminiGenerator(ctx, key, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", apperr.ErrInvalidConfiguration, name)
	}
}
