package modelwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events a copy or rename produces.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is the model store being kept in sync with its artifact file.
type Reloader interface {
	Path() string
	Reload() error
}

// Watcher observes the artifact's directory and reloads the store after the
// artifact file is written, created or renamed into place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	target   string
	store    Reloader
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher watches the directory holding store.Path(). Watching the
// directory instead of the file survives atomic replace-by-rename.
func NewWatcher(store Reloader, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if store == nil || store.Path() == "" {
		return nil, fmt.Errorf("model artifact path is not configured")
	}
	target, err := filepath.Abs(store.Path())
	if err != nil {
		return nil, fmt.Errorf("resolve artifact path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{watcher: w, target: target, store: store, debounce: debounce, logger: logger}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	batch := newReloadBatcher(w.store, w.debounce, w.logger)
	defer batch.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.debug("model artifact changed", "path", event.Name, "op", event.Op.String())
			batch.notify()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Warn("model watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.target {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

func (w *Watcher) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
