package search

import (
	"time"

	"github.com/hyperjump/docintel/internal/generation"
	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator sets the answer generator. Without one the engine answers in context-only mode.
func WithGenerator(g generation.Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithLogger sets the logger for generation failures and per-query debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultTopK sets the top_k used by Query when the request leaves it unset.
func WithDefaultTopK(k int) Option {
	return func(e *Engine) { e.defaultTopK = k }
}

// WithMaxTopK caps the number of results a single query may ask for.
func WithMaxTopK(k int) Option {
	return func(e *Engine) { e.maxTopK = k }
}

// WithGenerationTimeout bounds each generator call. Zero means the caller's deadline only.
func WithGenerationTimeout(d time.Duration) Option {
	return func(e *Engine) { e.generationTimeout = d }
}
