package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/docintel/internal/models"
)

func sampleAnswer() *models.RetrievalAnswer {
	return &models.RetrievalAnswer{
		Answer: "LLM disabled. Returning retrieved context only.",
		Mode:   models.ModeContextOnly,
		Sources: []models.QueryResult{
			{Metadata: models.Metadata{models.MetaChunkText: "Refunds are\nprocessed in 14 days.", models.MetaFilename: "policy.pdf", models.MetaChunkIndex: 2}, Distance: 0.25},
			{Metadata: models.Metadata{models.MetaChunkText: strings.Repeat("x", 300)}, Distance: 0.5},
		},
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputJSON); err != nil {
		t.Fatalf("WriteAnswer(json): %v", err)
	}
	var decoded models.RetrievalAnswer
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Sources) != 2 || decoded.Sources[0].ChunkText() != "Refunds are\nprocessed in 14 days." {
		t.Errorf("decoded: %+v", decoded)
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"LLM disabled. Returning retrieved context only.",
		"Sources (2):",
		"[1] distance: 0.2500 | policy.pdf #2",
		"Refunds are processed in 14 days.",
		"[2] distance: 0.5000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 300)) {
		t.Error("long chunk should be truncated")
	}
}

func TestWriteAnswer_TextNoSources(t *testing.T) {
	var buf bytes.Buffer
	ans := &models.RetrievalAnswer{Answer: "No relevant documents found.", Sources: []models.QueryResult{}}
	if err := WriteAnswer(&buf, ans, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Sources") {
		t.Errorf("unexpected sources header: %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteIngestSummaries(t *testing.T) {
	var buf bytes.Buffer
	items := []IngestSummary{
		{Path: "a.txt", DocumentID: "file:1", Chunks: 3},
		{Path: "b.png", Error: "unsupported file type"},
	}
	if err := WriteIngestSummaries(&buf, items, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "OK    a.txt (3 chunks, file:1)") || !strings.Contains(out, "FAIL  b.png: unsupported file type") {
		t.Errorf("output:\n%s", out)
	}
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var q models.SearchQuery
		_ = json.NewDecoder(r.Body).Decode(&q)
		if q.Query == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid argument: query cannot be empty"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.RetrievalAnswer{Answer: "ok:" + q.Query, Sources: []models.QueryResult{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	ans, err := c.Search(context.Background(), "refunds", 3)
	if err != nil {
		t.Fatal(err)
	}
	if ans.Answer != "ok:refunds" {
		t.Errorf("answer = %q", ans.Answer)
	}

	_, err = c.Search(context.Background(), "", 3)
	if err == nil || !strings.Contains(err.Error(), "400: invalid argument") {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestClient_StatusAndWatch(t *testing.T) {
	var removed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/status":
			_, _ = w.Write([]byte(`{"documents":2,"chunks":7,"vector_index_size":7,"vector_index_type":"memory","dimensions":384,"generation":{"enabled":false,"generator":""}}`))
		case r.URL.Path == "/api/v1/watch/directories" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"directories":["/inbox"]}`))
		case r.URL.Path == "/api/v1/watch/directories" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/api/v1/watch/directories" && r.Method == http.MethodDelete:
			removed = r.URL.Query().Get("path")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL, time.Second)
	st, err := c.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "vector_index_size:  7") || !strings.Contains(buf.String(), "generation:         context only") {
		t.Errorf("status text:\n%s", buf.String())
	}

	dirs, err := c.WatchDirectories(ctx)
	if err != nil || len(dirs) != 1 || dirs[0] != "/inbox" {
		t.Errorf("WatchDirectories = %v, %v", dirs, err)
	}
	if err := c.AddWatchDirectory(ctx, "/inbox2", true); err != nil {
		t.Error(err)
	}
	if err := c.RemoveWatchDirectory(ctx, "/inbox 2"); err != nil || removed != "/inbox 2" {
		t.Errorf("remove: %v, path %q", err, removed)
	}
}
