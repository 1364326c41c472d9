//go:build !faiss || !cgo
// +build !faiss !cgo

package vector

import (
	"context"
	"errors"

	"github.com/hyperjump/docintel/internal/models"
)

// ErrFAISSUnavailable is returned when the binary was built without FAISS support.
var ErrFAISSUnavailable = errors.New("FAISS not available: build with -tags=faiss and install the FAISS C library")

// FAISSIndex is a stub used when FAISS is not compiled in.
type FAISSIndex struct{}

// NewFAISSIndex returns ErrFAISSUnavailable.
func NewFAISSIndex(dimensions int) (*FAISSIndex, error) {
	return nil, ErrFAISSUnavailable
}

func (f *FAISSIndex) Add(ctx context.Context, vector []float32, metadata models.Metadata) error {
	return ErrFAISSUnavailable
}

func (f *FAISSIndex) AddBatch(ctx context.Context, vectors [][]float32, metadata []models.Metadata) error {
	return ErrFAISSUnavailable
}

func (f *FAISSIndex) Search(ctx context.Context, query []float32, topK int) ([]models.QueryResult, error) {
	return nil, ErrFAISSUnavailable
}

func (f *FAISSIndex) Size() int       { return 0 }
func (f *FAISSIndex) Dimensions() int { return 0 }
func (f *FAISSIndex) Reset() error    { return ErrFAISSUnavailable }
func (f *FAISSIndex) Close() error    { return nil }

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}
