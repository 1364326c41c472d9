package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/indexer"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/watcher"
	"go.uber.org/zap"
)

const noTextMessage = "Document extraction failed. No text found."

const defaultListLimit = 50

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"service": ServiceName, "version": Version})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"service": ServiceName, "status": "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if limit := s.config.Server.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))
	doc, err := s.indexer.IndexUpload(r.Context(), header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		s.respondFailure(w, "upload failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Document uploaded and indexed successfully",
		"chunks":      doc.ChunkCount,
		"document_id": doc.ID,
		"filename":    doc.Filename,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, doc, err := s.indexer.IndexText(r.Context(), req.Filename, req.Text)
	if err != nil {
		s.respondFailure(w, "ingest failed", err)
		return
	}
	resp := map[string]any{"chunk_count": res.ChunkCount, "no_content": res.NoContent}
	if doc != nil {
		resp["document_id"] = doc.ID
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSearch accepts a JSON body or ?query=&top_k= form parameters.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	params := r.URL.Query()
	if params.Has("query") || r.Method == http.MethodGet {
		query.Query = params.Get("query")
		if raw := params.Get("top_k"); raw != "" {
			k, err := strconv.Atoi(raw)
			if err != nil {
				s.respondError(w, http.StatusBadRequest, "top_k must be an integer")
				return
			}
			query.TopK = k
		}
	} else if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	answer, err := s.engine.Query(r.Context(), &query)
	if err != nil {
		s.respondFailure(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset, err1 := intParam(r, "offset", 0)
	limit, err2 := intParam(r, "limit", defaultListLimit)
	if err := errors.Join(err1, err2); err != nil || offset < 0 || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "offset and limit must be non-negative integers")
		return
	}
	ctx := r.Context()
	docs, err := s.storage.ListDocuments(ctx, offset, limit)
	if err != nil {
		s.respondFailure(w, "list documents failed", err)
		return
	}
	total, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.respondFailure(w, "count documents failed", err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": total})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.storage.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, "get document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.respondFailure(w, "status: count documents failed", err)
		return
	}
	chunkCount, err := s.storage.SumChunks(ctx)
	if err != nil {
		s.respondFailure(w, "status: sum chunks failed", err)
		return
	}
	resp := map[string]any{
		"service":           ServiceName,
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": s.engine.VectorIndexSize(),
		"vector_index_type": s.engine.VectorIndexType(),
		"dimensions":        s.engine.Dimensions(),
		"generation": map[string]any{
			"enabled":   s.engine.GenerationEnabled(),
			"generator": s.engine.GeneratorName(),
		},
		"config": map[string]any{
			"embedding_provider": s.config.Embedding.Provider,
			"chunk_size":         s.config.Chunking.ChunkSize,
			"default_top_k":      s.config.Search.DefaultTopK,
			"database_path":      s.config.Storage.DatabasePath,
		},
	}
	if sized, ok := s.storage.(interface{ SizeBytes() int64 }); ok {
		resp["disk_usage_bytes"] = sized.SizeBytes()
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
		if st, ok := s.watch.(interface{ Stats() watcher.Stats }); ok {
			resp["watch_stats"] = st.Stats()
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"directories": s.watch.Directories()})
}

type watchRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		s.respondError(w, http.StatusNotFound, "directory not found")
		return
	case err != nil:
		s.respondFailure(w, "watch add directory failed", err)
		return
	case !info.IsDir():
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := req.Sync == nil || *req.Sync
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.respondFailure(w, "watch add directory failed", err)
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var req watchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			path = req.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.respondFailure(w, "watch remove directory failed", err)
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchDirectories writes the current roots back to the config file, if there is one.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperr.IsInvalid(err), apperr.IsExtractionFailed(err):
		return http.StatusBadRequest
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	message := err.Error()
	if errors.Is(err, indexer.ErrNoText) {
		message = noTextMessage
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, message)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
