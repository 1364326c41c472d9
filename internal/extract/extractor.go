// Package extract turns uploaded or watched document files into plain text.
package extract

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/docintel/internal/apperr"
)

type extractFunc func(content []byte) (string, error)

var extractors = map[string]extractFunc{
	".pdf":  extractPDF,
	".txt":  extractPlain,
	".md":   extractPlain,
	".xlsx": extractExcel,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".odt":  extractODF,
	".odp":  extractODF,
	".ods":  extractODF,
}

var contentTypeExts = map[string]string{
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
	"text/markdown":   ".md",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.oasis.opendocument.text":                                  ".odt",
	"application/vnd.oasis.opendocument.presentation":                          ".odp",
	"application/vnd.oasis.opendocument.spreadsheet":                           ".ods",
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether ext (with leading dot, any case) can be extracted.
func (e *Extractor) Supported(ext string) bool {
	_, ok := extractors[strings.ToLower(ext)]
	return ok
}

// SupportedExtensions returns the accepted extensions in sorted order.
func (e *Extractor) SupportedExtensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ResolveExtension picks the extension used to extract an upload: the filename's extension when
// it has one, otherwise the one registered for contentType.
func ResolveExtension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return contentTypeExts[mt]
	}
	return ""
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on ext (e.g. ".pdf"). Unsupported extensions and
// parse failures wrap apperr.ErrExtractionFailed.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := extractors[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported file type %q (supported: %s)",
			apperr.ErrExtractionFailed, ext, strings.Join(e.SupportedExtensions(), ", "))
	}
	text, err := fn(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrExtractionFailed, err)
	}
	return text, nil
}
