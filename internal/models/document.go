// Package models defines core data structures for chunks, index results, answers and the document catalog.
package models

import "time"

// Chunk is a contiguous slice of a document's extracted text, the unit of retrieval.
type Chunk struct {
	Text          string `json:"text"`
	SequenceIndex int    `json:"sequence_index"`
}

// Document is a catalog record for an ingested document. The text itself lives in the vector index
// metadata; the catalog only describes what was ingested in this process.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ChunkCount  int       `json:"chunk_count"`
	SourcePath  string    `json:"source_path,omitempty"`
	SourceMtime int64     `json:"source_mtime,omitempty"`
	SourceSize  int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// IngestResult is the outcome of pushing one document through the ingestion pipeline.
type IngestResult struct {
	ChunkCount int  `json:"chunk_count"`
	NoContent  bool `json:"no_content"`
}
