// Package search answers questions from the shared vector index.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/docintel/internal/embedding"
	"github.com/hyperjump/docintel/internal/generation"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/vector"
	"go.uber.org/zap"
)

const (
	// NoResultsAnswer is returned when the index holds nothing relevant.
	NoResultsAnswer = "No relevant documents found."
	// ContextOnlyAnswer is returned with the sources when no generator could answer.
	ContextOnlyAnswer = "LLM disabled. Returning retrieved context only."
)

// Engine embeds a query, retrieves the nearest chunks and optionally generates an answer.
// It holds no state of its own besides its collaborators.
type Engine struct {
	embedder          embedding.Embedder
	index             vector.VectorIndex
	generator         generation.Generator
	logger            *zap.Logger
	defaultTopK       int
	maxTopK           int
	generationTimeout time.Duration
}

// NewEngine creates an engine over the shared index.
func NewEngine(embedder embedding.Embedder, index vector.VectorIndex, opts ...Option) *Engine {
	e := &Engine{
		embedder:    embedder,
		index:       index,
		logger:      zap.NewNop(),
		defaultTopK: models.DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerationEnabled reports whether a generator is configured.
func (e *Engine) GenerationEnabled() bool {
	return e.generator != nil
}

// GeneratorName returns the configured generator's name, or "" in context-only mode.
func (e *Engine) GeneratorName() string {
	if e.generator == nil {
		return ""
	}
	return e.generator.Name()
}

// Query validates a request, filling in the default top_k, and answers it.
func (e *Engine) Query(ctx context.Context, query *models.SearchQuery) (*models.RetrievalAnswer, error) {
	if err := ProcessQuery(query, e.defaultTopK, e.maxTopK); err != nil {
		return nil, err
	}
	return e.Answer(ctx, query.Query, query.TopK)
}

// Retrieve returns up to topK nearest chunks for query, closest first.
// topK <= 0 fails with apperr.ErrInvalidArgument; values above the maximum are clamped.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) ([]models.QueryResult, error) {
	vec, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	results, err := e.index.Search(ctx, vec, clampTopK(topK, e.maxTopK))
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

// Answer retrieves context for query and answers it. An empty index yields NoResultsAnswer.
// When no generator is configured or generation fails, the sources are returned with
// ContextOnlyAnswer; generation errors are logged and never returned.
func (e *Engine) Answer(ctx context.Context, query string, topK int) (*models.RetrievalAnswer, error) {
	startTime := time.Now()
	results, err := e.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.RetrievalAnswer{
			Answer:  NoResultsAnswer,
			Sources: []models.QueryResult{},
			Mode:    models.ModeNoResults,
		}, nil
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.ChunkText()
	}

	answer := &models.RetrievalAnswer{
		Answer:  ContextOnlyAnswer,
		Sources: results,
		Mode:    models.ModeContextOnly,
	}
	if e.generator != nil {
		if text, err := e.generate(ctx, query, contexts); err != nil {
			e.logger.Warn("generation failed, returning context only",
				zap.String("generator", e.generator.Name()),
				zap.Error(err))
		} else {
			answer.Answer = text
			answer.Mode = models.ModeGenerated
		}
	}

	e.logger.Debug("query answered",
		zap.Int("sources", len(results)),
		zap.String("mode", answer.Mode),
		zap.Duration("took", time.Since(startTime)))
	return answer, nil
}

func (e *Engine) generate(ctx context.Context, query string, contexts []string) (string, error) {
	if e.generationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.generationTimeout)
		defer cancel()
	}
	return e.generator.Generate(ctx, query, contexts)
}

// VectorIndexSize returns the number of entries in the index.
func (e *Engine) VectorIndexSize() int {
	return e.index.Size()
}

// VectorIndexType returns the index implementation name.
func (e *Engine) VectorIndexType() string {
	return e.index.Type()
}

// Dimensions returns the index dimension.
func (e *Engine) Dimensions() int {
	return e.index.Dimensions()
}
