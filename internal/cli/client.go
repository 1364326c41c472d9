package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/docintel/internal/models"
)

// Status is the shape of GET /api/v1/status.
type Status struct {
	Documents        int64    `json:"documents"`
	Chunks           int64    `json:"chunks"`
	VectorIndexSize  int      `json:"vector_index_size"`
	VectorIndexType  string   `json:"vector_index_type"`
	Dimensions       int      `json:"dimensions"`
	DiskUsageBytes   *int64   `json:"disk_usage_bytes,omitempty"`
	WatchDirectories []string `json:"watch_directories,omitempty"`
	WatchStats       *struct {
		Ingested int64 `json:"ingested"`
		Failed   int64 `json:"failed"`
	} `json:"watch_stats,omitempty"`
	Generation       struct {
		Enabled   bool   `json:"enabled"`
		Generator string `json:"generator"`
	} `json:"generation"`
}

// Client calls a running docintel server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Search asks the server to answer query from its top-k sources. topK 0 uses the server default.
func (c *Client) Search(ctx context.Context, query string, topK int) (*models.RetrievalAnswer, error) {
	var answer models.RetrievalAnswer
	err := c.do(ctx, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: query, TopK: topK}, http.StatusOK, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// Status fetches the server status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WatchDirectories lists the server's inbox directories.
func (c *Client) WatchDirectories(ctx context.Context) ([]string, error) {
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/watch/directories", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Directories, nil
}

// AddWatchDirectory adds an inbox directory, optionally ingesting its current files.
func (c *Client) AddWatchDirectory(ctx context.Context, path string, syncExisting bool) error {
	body := map[string]any{"path": path, "sync": syncExisting}
	return c.do(ctx, http.MethodPost, "/api/v1/watch/directories", body, http.StatusCreated, nil)
}

// RemoveWatchDirectory stops watching path.
func (c *Client) RemoveWatchDirectory(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/watch/directories?path="+url.QueryEscape(path), nil, http.StatusOK, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return serverError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func serverError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}
