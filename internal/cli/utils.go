// Package cli formats command output and talks to a running docintel server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const previewLen = 200

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes a retrieval answer to w in the given format.
func WriteAnswer(w io.Writer, answer *models.RetrievalAnswer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintf(w, "\n%s\n", answer.Answer)
	if len(answer.Sources) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nSources (%d):\n", len(answer.Sources))
	for i, src := range answer.Sources {
		fmt.Fprintln(w, "---------------------------------------------------------")
		fmt.Fprintf(w, "[%d] distance: %.4f", i+1, src.Distance)
		if name := src.Metadata.String(models.MetaFilename); name != "" {
			fmt.Fprintf(w, " | %s", name)
		}
		if idx, ok := src.Metadata[models.MetaChunkIndex]; ok {
			fmt.Fprintf(w, " #%v", idx)
		}
		fmt.Fprintf(w, "\n%s\n", utils.Preview(src.ChunkText(), previewLen))
	}
	fmt.Fprintln(w)
	return nil
}

// IngestSummary is one line of `docintel ingest` output.
type IngestSummary struct {
	Path       string `json:"path"`
	DocumentID string `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks"`
	Error      string `json:"error,omitempty"`
}

// WriteIngestSummaries writes per-file ingestion results.
func WriteIngestSummaries(w io.Writer, items []IngestSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, items)
	}
	for _, it := range items {
		if it.Error != "" {
			fmt.Fprintf(w, "FAIL  %s: %s\n", it.Path, it.Error)
			continue
		}
		fmt.Fprintf(w, "OK    %s (%d chunks, %s)\n", it.Path, it.Chunks, it.DocumentID)
	}
	return nil
}

// WriteStatus writes a server status report.
func WriteStatus(w io.Writer, status *Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "documents:          %d   # catalogued documents\n", status.Documents)
	fmt.Fprintf(w, "chunks:             %d   # chunks recorded in the catalog\n", status.Chunks)
	fmt.Fprintf(w, "vector_index_size:  %d   # entries in the vector index\n", status.VectorIndexSize)
	fmt.Fprintf(w, "vector_index_type:  %s\n", status.VectorIndexType)
	fmt.Fprintf(w, "dimensions:         %d\n", status.Dimensions)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # catalog database on disk\n", *status.DiskUsageBytes)
	}
	mode := "context only"
	if status.Generation.Enabled {
		mode = status.Generation.Generator
	}
	fmt.Fprintf(w, "generation:         %s\n", mode)
	if len(status.WatchDirectories) > 0 {
		fmt.Fprintf(w, "watching:           %s\n", strings.Join(status.WatchDirectories, ", "))
	}
	if ws := status.WatchStats; ws != nil {
		fmt.Fprintf(w, "inbox:              %d ingested, %d failed\n", ws.Ingested, ws.Failed)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
