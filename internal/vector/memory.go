package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/models"
)

// MemoryIndex is an in-memory exact index using brute-force squared L2 search.
// Every search scans all entries, O(N*D).
type MemoryIndex struct {
	dimensions int
	vectors    [][]float32
	metadata   []models.Metadata
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", apperr.ErrInvalidConfiguration, dimensions)
	}
	return &MemoryIndex{
		dimensions: dimensions,
		vectors:    make([][]float32, 0),
		metadata:   make([]models.Metadata, 0),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Dimensions returns the fixed vector length.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Add appends a vector and its metadata as one entry.
func (m *MemoryIndex) Add(ctx context.Context, vector []float32, metadata models.Metadata) error {
	if err := checkVector(vector, m.dimensions); err != nil {
		return err
	}
	vec := make([]float32, m.dimensions)
	copy(vec, vector)
	meta := metadata.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = append(m.vectors, vec)
	m.metadata = append(m.metadata, meta)
	return nil
}

// AddBatch validates all vectors, then appends every pair under one lock.
func (m *MemoryIndex) AddBatch(ctx context.Context, vectors [][]float32, metadata []models.Metadata) error {
	if len(vectors) != len(metadata) {
		return fmt.Errorf("%w: %d vectors but %d metadata entries", apperr.ErrInvalidArgument, len(vectors), len(metadata))
	}
	vecs := make([][]float32, len(vectors))
	metas := make([]models.Metadata, len(metadata))
	for i, v := range vectors {
		if err := checkVector(v, m.dimensions); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
		vecs[i] = append([]float32(nil), v...)
		metas[i] = metadata[i].Clone()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = append(m.vectors, vecs...)
	m.metadata = append(m.metadata, metas...)
	return nil
}

// Search returns the topK nearest entries by squared L2 distance.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, topK int) ([]models.QueryResult, error) {
	if err := checkTopK(topK); err != nil {
		return nil, err
	}
	if err := checkVector(query, m.dimensions); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.vectors) == 0 {
		return []models.QueryResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type scored struct {
		pos  int
		dist float64
	}
	scores := make([]scored, len(m.vectors))
	for i, vec := range m.vectors {
		scores[i] = scored{pos: i, dist: SquaredL2(query, vec)}
	}
	// stable: equal distances keep insertion order
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].dist < scores[j].dist })
	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]models.QueryResult, topK)
	for i := 0; i < topK; i++ {
		results[i] = models.QueryResult{
			Metadata: m.metadata[scores[i].pos].Clone(),
			Distance: scores[i].dist,
		}
	}
	return results, nil
}

// Size returns the number of entries in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Reset drops every entry.
func (m *MemoryIndex) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = make([][]float32, 0)
	m.metadata = make([]models.Metadata, 0)
	return nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
