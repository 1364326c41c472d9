package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docintel/internal/embedding"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/vector"
	"go.uber.org/zap"
)

// Pipeline chunks document text, embeds the chunks and appends them to the shared index.
type Pipeline struct {
	chunker  *Chunker
	embedder embedding.Embedder
	index    vector.VectorIndex
	logger   *zap.Logger
}

// NewPipeline wires a pipeline around the shared index.
func NewPipeline(chunker *Chunker, embedder embedding.Embedder, index vector.VectorIndex, opts ...Option) *Pipeline {
	s := newSettings(opts)
	return &Pipeline{chunker: chunker, embedder: embedder, index: index, logger: s.logger}
}

// Process ingests text with no extra metadata.
func (p *Pipeline) Process(ctx context.Context, text string) (models.IngestResult, error) {
	return p.ProcessDocument(ctx, text, nil)
}

// ProcessDocument ingests text, storing base plus chunk_text and chunk_index next to each vector.
// Blank text is reported as NoContent, not as an error. Embedding happens before anything is added.
// Entries are appended one by one with no rollback: on failure the result's ChunkCount is the
// number of entries that made it into the index.
func (p *Pipeline) ProcessDocument(ctx context.Context, text string, base models.Metadata) (models.IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.IngestResult{NoContent: true}, nil
	}

	chunks := p.chunker.Chunk(text)
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if err := embedding.CheckDimensions(vectors, len(chunks), p.index.Dimensions()); err != nil {
		return models.IngestResult{}, err
	}

	added := 0
	for i, ch := range chunks {
		meta := base.Clone()
		if meta == nil {
			meta = models.Metadata{}
		}
		meta[models.MetaChunkText] = ch.Text
		meta[models.MetaChunkIndex] = ch.SequenceIndex
		if err := p.index.Add(ctx, vectors[i], meta); err != nil {
			return models.IngestResult{ChunkCount: added},
				fmt.Errorf("failed to index chunk %d (%d of %d added): %w", i, added, len(chunks), err)
		}
		added++
	}

	p.logger.Debug("pipeline ingested text",
		zap.Int("chunks", added),
		zap.Int("index_size", p.index.Size()))
	return models.IngestResult{ChunkCount: added}, nil
}
