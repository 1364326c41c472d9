// Package indexer turns document text into index entries: chunking, embedding and insertion.
package indexer

import (
	"fmt"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/models"
)

// Chunker splits text into contiguous, non-overlapping windows of at most chunkSize characters
// (Unicode code points). Concatenating the chunks in order reproduces the input exactly.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker. chunkSize must be positive.
func NewChunker(chunkSize int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", apperr.ErrInvalidConfiguration, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize}, nil
}

// Size returns the window size in characters.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Chunk splits text into windows. Empty text yields nil. Only the last chunk may be shorter
// than the window size.
func (c *Chunker) Chunk(text string) []models.Chunk {
	if text == "" {
		return nil
	}
	var chunks []models.Chunk
	start, n := 0, 0
	for i := range text {
		if n == c.chunkSize {
			chunks = append(chunks, models.Chunk{Text: text[start:i], SequenceIndex: len(chunks)})
			start, n = i, 0
		}
		n++
	}
	chunks = append(chunks, models.Chunk{Text: text[start:], SequenceIndex: len(chunks)})
	return chunks
}

// ChunkText splits text with a one-off chunker of the given size.
func ChunkText(text string, chunkSize int) ([]models.Chunk, error) {
	c, err := NewChunker(chunkSize)
	if err != nil {
		return nil, err
	}
	return c.Chunk(text), nil
}
