// Package vector provides the vector index that stores chunk embeddings next to their metadata.
package vector

import (
	"context"

	"github.com/hyperjump/docintel/internal/models"
)

// VectorIndex stores (vector, metadata) pairs and answers nearest-neighbour queries.
// Entries are addressed by insertion position; there is no per-entry delete, only Reset.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Add appends one entry. A vector whose length differs from Dimensions fails with
	// apperr.ErrDimensionMismatch and leaves the index unchanged.
	Add(ctx context.Context, vector []float32, metadata models.Metadata) error
	// AddBatch appends every pair or none of them.
	AddBatch(ctx context.Context, vectors [][]float32, metadata []models.Metadata) error
	// Search returns at most topK entries ordered by ascending squared L2 distance,
	// ties broken by insertion order.
	Search(ctx context.Context, query []float32, topK int) ([]models.QueryResult, error)
	Size() int
	Dimensions() int
	Reset() error
	Close() error
	Type() string
}
