package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	root, ok := w.rootOf(ev.Name)
	if !ok {
		return
	}
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) {
				w.handleNewDirectory(root, ev.Name)
			}
			return
		}
		if w.ingester.Accepts(ev.Name) {
			w.schedule(ev.Name)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(ev.Name)
		if w.ingester.Accepts(ev.Name) {
			w.logger.Info("inbox file removed; its entries stay in the index", zap.String("path", ev.Name))
		}
	}
}

// handleNewDirectory watches a directory created or moved under root and ingests its files.
func (w *Watcher) handleNewDirectory(root, dir string) {
	w.mu.Lock()
	fsw := w.fsw
	if fsw == nil {
		w.mu.Unlock()
		return
	}
	added, err := w.addTree(fsw, dir)
	w.watched[root] = append(w.watched[root], added...)
	w.mu.Unlock()
	if err != nil {
		w.logger.Warn("failed to watch new directory", zap.String("path", dir), zap.Error(err))
	}
	w.syncDirectory(dir)
}

func (w *Watcher) rootOf(path string) (string, bool) {
	clean := filepath.Clean(path)
	for _, root := range w.Directories() {
		if root == clean || inDir(root, clean) {
			return root, true
		}
	}
	return "", false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule ingests path once it has been quiet for the debounce interval.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) syncDirectory(dir string) {
	w.logger.Debug("syncing inbox directory", zap.String("path", dir))
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && w.ingester.Accepts(path) {
			w.ingest(path)
		}
		return nil
	})
}

func (w *Watcher) ingest(path string) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	doc, err := w.ingester.IndexFile(ctx, path)
	if err != nil {
		w.failed.Add(1)
		w.logger.Warn("failed to ingest inbox file", zap.String("path", path), zap.Error(err))
		return
	}
	w.ingested.Add(1)
	w.logger.Info("ingested inbox file",
		zap.String("path", path),
		zap.String("doc_id", doc.ID),
		zap.Int("chunks", doc.ChunkCount))
}
