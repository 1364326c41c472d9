// Package embedding maps text to fixed-length vectors through local or remote models.
package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/docintel/internal/apperr"
)

// Embedder produces vector embeddings for text. Every vector has length Dimensions();
// EmbedDocuments returns one vector per input, in input order.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// CheckDimensions verifies that there are want vectors, each of length dims.
func CheckDimensions(vectors [][]float32, want, dims int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: embedder returned %d vectors for %d inputs", apperr.ErrDimensionMismatch, len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has length %d, expected %d", apperr.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return nil
}

// embedEach embeds texts one at a time with fn, stopping at the first error or cancellation.
func embedEach(ctx context.Context, texts []string, fn func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := fn(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
