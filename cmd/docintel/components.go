package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/embedding"
	"github.com/hyperjump/docintel/internal/extract"
	"github.com/hyperjump/docintel/internal/generation"
	"github.com/hyperjump/docintel/internal/indexer"
	"github.com/hyperjump/docintel/internal/search"
	"github.com/hyperjump/docintel/internal/storage"
	"github.com/hyperjump/docintel/internal/vector"
	"go.uber.org/zap"
)

// Components is the wired engine: one catalog, one embedder and the single shared index.
type Components struct {
	Storage     *storage.SQLiteStorage
	Embedder    embedding.Embedder
	VectorIndex vector.VectorIndex
	Engine      *search.Engine
	Indexer     *indexer.Indexer
}

// Close releases whatever was initialized.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

// initializeComponents builds the engine from cfg. The catalog at dbPath is cleared, because it
// describes an index that starts empty on every run.
func initializeComponents(ctx context.Context, cfg *config.Config, dbPath string, logger *zap.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Storage, err = storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := c.Storage.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset catalog: %w", err)
	}

	c.Embedder, err = embedding.NewEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	c.VectorIndex, err = vector.NewVectorIndex(cfg.Index.Type, cfg.Embedding.Dimensions)
	if err != nil {
		// Fall back to memory index if the configured type is unavailable (FAISS not compiled in).
		if cfg.Index.Type == string(vector.IndexTypeMemory) || cfg.Index.Type == "" {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
		logger.Warn("failed to create vector index, falling back to memory",
			zap.String("requested_type", cfg.Index.Type),
			zap.Error(err))
		c.VectorIndex, err = vector.NewVectorIndex(string(vector.IndexTypeMemory), cfg.Embedding.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}
	logger.Info("vector index initialized",
		zap.String("type", c.VectorIndex.Type()),
		zap.Int("dimensions", c.VectorIndex.Dimensions()),
		zap.Bool("faiss_available", vector.IsFAISSAvailable()))

	gen, err := generation.NewGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		if !errors.Is(err, apperr.ErrGenerationUnavailable) {
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
		logger.Warn("answer generation unavailable, answering with retrieved context only", zap.Error(err))
		gen = nil
	}

	chunker, err := indexer.NewChunker(cfg.Chunking.ChunkSize)
	if err != nil {
		return nil, err
	}
	pipeline := indexer.NewPipeline(chunker, c.Embedder, c.VectorIndex, indexer.WithLogger(logger))
	c.Indexer = indexer.NewIndexer(pipeline, c.Storage, extract.NewExtractor(),
		indexer.WithLogger(logger),
		indexer.WithAllowedExtensions(cfg.Watch.Extensions))

	engineOpts := []search.Option{
		search.WithLogger(logger),
		search.WithDefaultTopK(cfg.Search.DefaultTopK),
		search.WithMaxTopK(cfg.Search.MaxTopK),
		search.WithGenerationTimeout(cfg.Generation.Timeout()),
	}
	if gen != nil {
		engineOpts = append(engineOpts, search.WithGenerator(gen))
	}
	c.Engine = search.NewEngine(c.Embedder, c.VectorIndex, engineOpts...)
	return c, nil
}
