// Package storage defines the document catalog: a record of every document ingested into the index.
package storage

import (
	"context"

	"github.com/hyperjump/docintel/internal/models"
)

// Storage defines document catalog operations.
type Storage interface {
	// CreateDocument inserts doc, replacing any record with the same ID.
	CreateDocument(ctx context.Context, doc *models.Document) error
	// GetDocument returns apperr.ErrNotFound when no document has id.
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	// FindBySource returns the document ingested from the file at path, or apperr.ErrNotFound.
	FindBySource(ctx context.Context, path string) (*models.Document, error)

	CountDocuments(ctx context.Context) (int64, error)
	SumChunks(ctx context.Context) (int64, error)

	// Reset removes every record.
	Reset(ctx context.Context) error
	Close() error
}
