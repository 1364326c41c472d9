//go:build faiss && cgo
// +build faiss,cgo

package vector

/*
#cgo CFLAGS: -I/opt/homebrew/include -I/usr/local/include
#cgo LDFLAGS: -L/opt/homebrew/lib -L/usr/local/lib -lfaiss_c

#include <stdlib.h>
#include <faiss/c_api/Index_c.h>
#include <faiss/c_api/IndexFlat_c.h>
#include <faiss/c_api/error_c.h>
*/
import "C"

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/models"
)

// FAISSIndex stores vectors in a FAISS IndexFlatL2 (exact squared L2) and keeps metadata in a
// parallel slice. FAISS labels are insertion positions, so label i maps to metadata[i].
type FAISSIndex struct {
	index      *C.FaissIndex
	dimensions int
	metadata   []models.Metadata
	mu         sync.RWMutex
}

// NewFAISSIndex creates a flat L2 FAISS index with the given dimension.
func NewFAISSIndex(dimensions int) (*FAISSIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", apperr.ErrInvalidConfiguration, dimensions)
	}

	var flat *C.FaissIndexFlatL2
	ret := C.faiss_IndexFlatL2_new_with(&flat, C.idx_t(dimensions))
	if ret != 0 {
		return nil, fmt.Errorf("failed to create FAISS index: %s", faissLastError())
	}

	return &FAISSIndex{
		index:      (*C.FaissIndex)(unsafe.Pointer(flat)),
		dimensions: dimensions,
		metadata:   make([]models.Metadata, 0),
	}, nil
}

func faissLastError() string {
	cErr := C.faiss_get_last_error()
	if cErr == nil {
		return "unknown error"
	}
	return C.GoString(cErr)
}

// Add appends one entry.
func (f *FAISSIndex) Add(ctx context.Context, vector []float32, metadata models.Metadata) error {
	return f.AddBatch(ctx, [][]float32{vector}, []models.Metadata{metadata})
}

// AddBatch validates all vectors and adds them with one FAISS call.
func (f *FAISSIndex) AddBatch(ctx context.Context, vectors [][]float32, metadata []models.Metadata) error {
	if len(vectors) != len(metadata) {
		return fmt.Errorf("%w: %d vectors but %d metadata entries", apperr.ErrInvalidArgument, len(vectors), len(metadata))
	}
	if len(vectors) == 0 {
		return nil
	}

	n := len(vectors)
	flat := make([]float32, n*f.dimensions)
	metas := make([]models.Metadata, n)
	for i, vec := range vectors {
		if err := checkVector(vec, f.dimensions); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
		copy(flat[i*f.dimensions:(i+1)*f.dimensions], vec)
		metas[i] = metadata[i].Clone()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index == nil {
		return fmt.Errorf("FAISS index is closed")
	}
	ret := C.faiss_Index_add(f.index, C.idx_t(n), (*C.float)(unsafe.Pointer(&flat[0])))
	if ret != 0 {
		return fmt.Errorf("failed to add vectors to FAISS index: %s", faissLastError())
	}
	f.metadata = append(f.metadata, metas...)
	return nil
}

// Search returns the topK nearest entries. FAISS reports squared L2 distances for IndexFlatL2.
func (f *FAISSIndex) Search(ctx context.Context, query []float32, topK int) ([]models.QueryResult, error) {
	if err := checkTopK(topK); err != nil {
		return nil, err
	}
	if err := checkVector(query, f.dimensions); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.index == nil {
		return nil, fmt.Errorf("FAISS index is closed")
	}

	ntotal := int(C.faiss_Index_ntotal(f.index))
	if ntotal == 0 {
		return []models.QueryResult{}, nil
	}
	k := topK
	if k > ntotal {
		k = ntotal
	}

	// Fetch past k while the last fetched distance still ties the k-th, so every entry
	// tied at the cut is seen and the earliest inserted ones win.
	fetch := k
	if fetch < ntotal {
		fetch++
	}
	var distances []float32
	var labels []int64
	for {
		var err error
		distances, labels, err = f.searchLocked(query, fetch)
		if err != nil {
			return nil, err
		}
		if fetch == ntotal || distances[fetch-1] != distances[k-1] {
			break
		}
		fetch *= 2
		if fetch > ntotal {
			fetch = ntotal
		}
	}

	type hit struct {
		pos  int64
		dist float64
	}
	hits := make([]hit, 0, fetch)
	for i := 0; i < fetch; i++ {
		if labels[i] < 0 || int(labels[i]) >= len(f.metadata) {
			continue
		}
		hits = append(hits, hit{pos: labels[i], dist: float64(distances[i])})
	}
	// FAISS does not promise an order among equal distances
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].pos < hits[j].pos
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]models.QueryResult, len(hits))
	for i, h := range hits {
		results[i] = models.QueryResult{Metadata: f.metadata[h.pos].Clone(), Distance: h.dist}
	}
	return results, nil
}

// searchLocked runs one FAISS query for the n nearest neighbours. Caller holds f.mu.
func (f *FAISSIndex) searchLocked(query []float32, n int) ([]float32, []int64, error) {
	distances := make([]float32, n)
	labels := make([]int64, n)
	ret := C.faiss_Index_search(
		f.index,
		1,
		(*C.float)(unsafe.Pointer(&query[0])),
		C.idx_t(n),
		(*C.float)(unsafe.Pointer(&distances[0])),
		(*C.idx_t)(unsafe.Pointer(&labels[0])),
	)
	if ret != 0 {
		return nil, nil, fmt.Errorf("FAISS search failed: %s", faissLastError())
	}
	return distances, labels, nil
}

// Size returns the number of entries.
func (f *FAISSIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.metadata)
}

// Dimensions returns the fixed vector length.
func (f *FAISSIndex) Dimensions() int {
	return f.dimensions
}

// Reset drops every entry.
func (f *FAISSIndex) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		C.faiss_Index_reset(f.index)
	}
	f.metadata = make([]models.Metadata, 0)
	return nil
}

// Close frees the FAISS index resources.
func (f *FAISSIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		C.faiss_Index_free(f.index)
		f.index = nil
	}
	return nil
}

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}
