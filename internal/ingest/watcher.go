package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher keeps inbox directories in sync with the document store: files created or
// written under a root are imported for owner once writes settle, removed files are
// deleted.
type Watcher struct {
	importer   *Importer
	owner      string
	roots      []string
	extensions []string
	recursive  bool
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	ctx      context.Context
	timers   map[string]*time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher importing into importer on behalf of owner.
// An empty extensions list accepts every file.
func NewWatcher(importer *Importer, owner string, roots, extensions []string, recursive bool, opts ...Option) *Watcher {
	o := applyOptions(opts)
	clean := make([]string, 0, len(roots))
	for _, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			clean = append(clean, abs)
		}
	}
	return &Watcher{
		importer:   importer,
		owner:      owner,
		roots:      clean,
		extensions: extensions,
		recursive:  recursive,
		debounce:   o.debounce,
		logger:     o.logger,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
}

// Start begins watching. Missing roots are created. It returns once the watches are in
// place; events are handled until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := os.MkdirAll(root, 0755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := w.addTree(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.ctx = ctx
	w.logger.Debug("watcher started", zap.Strings("roots", w.roots), zap.Bool("recursive", w.recursive))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		return fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
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

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !w.underRoot(path) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if MatchExtension(path, w.extensions) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
		if MatchExtension(path, w.extensions) {
			if err := w.importer.Remove(w.context(), w.owner, path); err != nil {
				w.logger.Warn("remove failed", zap.String("path", path), zap.Error(err))
			}
		}
		// The path may have been a directory; its files send no events of their own
		// when it is renamed away.
		w.cancelTree(path)
		if _, err := w.importer.RemoveTree(w.context(), w.owner, path); err != nil {
			w.logger.Warn("remove directory failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (w *Watcher) handleNewDirectory(dir string) {
	if !w.recursive {
		return
	}
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}
	if err := w.addTree(fsw, dir); err != nil {
		w.logger.Warn("watch new directory failed", zap.String("path", dir), zap.Error(err))
	}
	w.syncDirectory(dir)
}

func (w *Watcher) underRoot(path string) bool {
	clean := filepath.Clean(path)
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, clean)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return w.recursive || !strings.Contains(rel, string(filepath.Separator))
		}
	}
	return false
}

// schedule imports path once no further events arrive within the debounce window.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.importFile(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

// cancelTree drops pending imports for files under dir.
func (w *Watcher) cancelTree(dir string) {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		if strings.HasPrefix(path, prefix) {
			t.Stop()
			delete(w.timers, path)
		}
	}
}

func (w *Watcher) importFile(path string) {
	outcome, err := w.importer.ImportFile(w.context(), w.owner, path)
	if err != nil {
		w.logger.Warn("import failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Debug("watched file synced", zap.String("path", path), zap.Stringer("outcome", outcome))
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

func (w *Watcher) syncDirectory(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !w.recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if MatchExtension(path, w.extensions) {
			w.importFile(path)
		}
		return nil
	})
}

// SyncExisting imports files already present under every root, skipping unchanged ones.
func (w *Watcher) SyncExisting() {
	for _, root := range w.roots {
		w.syncDirectory(root)
	}
}

// Directories returns the watched root directories.
func (w *Watcher) Directories() []string {
	return append([]string(nil), w.roots...)
}

// Stop stops the watcher, dropping pending imports.
func (w *Watcher) Stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
