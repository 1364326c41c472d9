package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/extract"
	"github.com/hyperjump/docintel/internal/fileid"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = fmt.Errorf("%w: no text found", apperr.ErrExtractionFailed)

// Indexer ingests whole documents: it extracts text, runs the pipeline and records the
// document in the catalog.
type Indexer struct {
	pipeline    *Pipeline
	storage     storage.Storage
	extractor   *extract.Extractor
	allowedExts []string
	logger      *zap.Logger

	// files collapses concurrent IndexFile calls for one path into a single ingest.
	files singleflight.Group
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(pipeline *Pipeline, store storage.Storage, extractor *extract.Extractor, opts ...Option) *Indexer {
	s := newSettings(opts)
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return &Indexer{
		pipeline:    pipeline,
		storage:     store,
		extractor:   extractor,
		allowedExts: s.allowedExts,
		logger:      s.logger,
	}
}

// IndexUpload extracts and ingests an uploaded file. Unsupported types and documents without
// text fail with apperr.ErrExtractionFailed.
func (idx *Indexer) IndexUpload(ctx context.Context, filename, contentType string, content []byte) (*models.Document, error) {
	ext := extract.ResolveExtension(filename, contentType)
	if !idx.extractor.Supported(ext) {
		return nil, fmt.Errorf("%w: unsupported file type for %q (supported: %s)",
			apperr.ErrExtractionFailed, filename, strings.Join(idx.extractor.SupportedExtensions(), ", "))
	}
	text, err := idx.extractor.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{
		ID:          fileid.UploadID(),
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(content)),
	}
	if err := idx.ingest(ctx, doc, text); err != nil {
		return nil, err
	}
	idx.logger.Info("indexed upload",
		zap.String("doc_id", doc.ID),
		zap.String("filename", filename),
		zap.Int("chunks", doc.ChunkCount))
	return doc, nil
}

// IndexText ingests raw text. Blank text is reported through NoContent and is not catalogued.
func (idx *Indexer) IndexText(ctx context.Context, filename, text string) (models.IngestResult, *models.Document, error) {
	if strings.TrimSpace(text) == "" {
		return models.IngestResult{NoContent: true}, nil, nil
	}
	if filename == "" {
		filename = "text"
	}
	doc := &models.Document{
		ID:          fileid.UploadID(),
		Filename:    filename,
		ContentType: "text/plain",
		SizeBytes:   int64(len(text)),
	}
	if err := idx.ingest(ctx, doc, text); err != nil {
		return models.IngestResult{ChunkCount: doc.ChunkCount}, nil, err
	}
	return models.IngestResult{ChunkCount: doc.ChunkCount}, doc, nil
}

// IndexFile reads a file from path and ingests it. A file already ingested with the same
// modification time and size is skipped and its existing record returned.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (*models.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(idx.allowedExts) > 0 && !extensionAllowed(ext, idx.allowedExts) {
		return nil, fmt.Errorf("%w: extension %q not in allowed list", apperr.ErrInvalidArgument, ext)
	}

	v, err, _ := idx.files.Do(absPath, func() (any, error) {
		return idx.indexFile(ctx, absPath, ext)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Document), nil
}

// indexFile skips a file whose catalog record matches its mtime and size, and ingests it otherwise.
func (idx *Indexer) indexFile(ctx context.Context, absPath, ext string) (*models.Document, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", apperr.ErrInvalidArgument, absPath)
	}

	mtime := info.ModTime().UnixNano()
	if existing, err := idx.storage.FindBySource(ctx, absPath); err == nil {
		if existing.SourceMtime == mtime && existing.SourceSize == info.Size() {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
			return existing, nil
		}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", absPath, err)
	}

	text, err := idx.extractor.Extract(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	doc := &models.Document{
		ID:          fileid.VersionID(absPath, mtime, info.Size()),
		Filename:    filepath.Base(absPath),
		ContentType: contentTypeFor(ext),
		SizeBytes:   info.Size(),
		SourcePath:  absPath,
		SourceMtime: mtime,
		SourceSize:  info.Size(),
	}
	if err := idx.ingest(ctx, doc, text); err != nil {
		return nil, err
	}
	idx.logger.Debug("indexer file indexed",
		zap.String("path", absPath),
		zap.String("doc_id", doc.ID),
		zap.Int("chunks", doc.ChunkCount))
	return doc, nil
}

// IndexDirectory walks dir recursively and indexes each regular file with an allowed extension
// (all supported extensions when no list was configured). It returns the number of files
// processed and the first error encountered.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%w: not a directory: %s", apperr.ErrInvalidArgument, absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !idx.Accepts(path) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if _, indexErr := idx.IndexFile(ctx, path); indexErr != nil {
			return fmt.Errorf("%s: %w", path, indexErr)
		}
		n++
		return nil
	})
	return n, err
}

// Accepts reports whether IndexFile would consider path by its extension.
func (idx *Indexer) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if len(idx.allowedExts) > 0 {
		return extensionAllowed(ext, idx.allowedExts)
	}
	return idx.extractor.Supported(ext)
}

// ingest runs text through the pipeline and records doc. Documents without text are rejected.
func (idx *Indexer) ingest(ctx context.Context, doc *models.Document, text string) error {
	res, err := idx.pipeline.ProcessDocument(ctx, text, models.Metadata{
		models.MetaDocumentID: doc.ID,
		models.MetaFilename:   doc.Filename,
	})
	doc.ChunkCount = res.ChunkCount
	if err != nil {
		return fmt.Errorf("ingest %s: %w", doc.Filename, err)
	}
	if res.NoContent {
		return ErrNoText
	}
	doc.CreatedAt = time.Now().UTC()
	if err := idx.storage.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
