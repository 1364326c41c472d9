// Package watcher ingests files dropped into inbox directories, using fsnotify with debouncing.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/docintel/internal/models"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Ingester is the part of the indexer the watcher drives.
type Ingester interface {
	IndexFile(ctx context.Context, path string) (*models.Document, error)
	Accepts(path string) bool
}

// Stats counts watcher activity since Start.
type Stats struct {
	Ingested int64 `json:"ingested"`
	Failed   int64 `json:"failed"`
}

// Watcher feeds new and modified files under its roots to an Ingester. Removed files are only
// logged: index entries are never deleted.
type Watcher struct {
	ingester  Ingester
	recursive bool
	debounce  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	fsw     *fsnotify.Watcher
	roots   []string
	watched map[string][]string // root -> directories registered with fsnotify
	pending map[string]*time.Timer

	ingested atomic.Int64
	failed   atomic.Int64
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for watch and ingest events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a path must stay quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithRecursive controls whether subdirectories are watched. Defaults to true.
func WithRecursive(recursive bool) Option {
	return func(w *Watcher) { w.recursive = recursive }
}

// NewWatcher creates a watcher over roots. Nothing happens until Start.
func NewWatcher(ingester Ingester, roots []string, opts ...Option) *Watcher {
	w := &Watcher{
		ingester:  ingester,
		recursive: true,
		debounce:  defaultDebounce,
		logger:    zap.NewNop(),
		roots:     cleanRoots(roots),
		watched:   make(map[string][]string),
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func cleanRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			out = append(out, filepath.Clean(abs))
		}
	}
	return out
}

// Start registers the roots, creating missing ones, and processes events until ctx is
// cancelled or Stop is called. ctx is also the context files are ingested under.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.fsw != nil {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.ctx = ctx
	for _, root := range w.roots {
		if err := w.watchRootLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()

	w.logger.Info("watching inbox directories", zap.Strings("roots", w.roots), zap.Bool("recursive", w.recursive))
	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Sync ingests the files already present under every root.
func (w *Watcher) Sync() {
	for _, root := range w.Directories() {
		w.syncDirectory(root)
	}
}

// AddDirectory starts watching root, optionally ingesting what it already contains.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return errors.New("watcher not started")
	}
	for _, r := range w.roots {
		if r == abs {
			return nil
		}
	}
	if err := w.watchRootLocked(abs); err != nil {
		return err
	}
	w.roots = append(w.roots, abs)
	w.logger.Info("watch directory added", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if syncExisting {
		go w.syncDirectory(abs)
	}
	return nil
}

// RemoveDirectory stops watching root. Documents already ingested from it stay searchable.
func (w *Watcher) RemoveDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.roots {
		if r != abs {
			continue
		}
		if w.fsw != nil {
			for _, p := range w.watched[abs] {
				_ = w.fsw.Remove(p)
			}
		}
		delete(w.watched, abs)
		w.roots = append(w.roots[:i], w.roots[i+1:]...)
		w.logger.Info("watch directory removed", zap.String("path", abs))
		return nil
	}
	return nil
}

// Directories returns the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stats returns ingestion counters.
func (w *Watcher) Stats() Stats {
	return Stats{Ingested: w.ingested.Load(), Failed: w.failed.Load()}
}

// Stop cancels pending ingests and releases the fsnotify watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()
	if fsw != nil {
		_ = fsw.Close()
	}
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *Watcher) watchRootLocked(root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	dirs, err := w.addTree(w.fsw, root)
	if err != nil {
		return err
	}
	w.watched[root] = dirs
	return nil
}

// addTree registers dir, and its subdirectories when recursive, and returns what was added.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) ([]string, error) {
	if !w.recursive {
		if err := fsw.Add(dir); err != nil {
			return nil, err
		}
		return []string{dir}, nil
	}
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return err
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
