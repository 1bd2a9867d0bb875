// Package modelwatch reloads the classifier artifact when it changes on disk.
package modelwatch

import (
	"log/slog"
	"sync"
	"time"
)

// reloadBatcher turns a burst of artifact events into a single Reload once
// the file has been quiet for window. Reloads never overlap.
type reloadBatcher struct {
	store  Reloader
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	stopped bool

	reloading sync.Mutex
}

func newReloadBatcher(store Reloader, window time.Duration, logger *slog.Logger) *reloadBatcher {
	return &reloadBatcher{store: store, window: window, logger: logger}
}

// notify records one event and restarts the quiet window.
func (b *reloadBatcher) notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.pending++
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
		return
	}
	b.timer.Reset(b.window)
}

// stop drops pending events; a reload already running is allowed to finish.
func (b *reloadBatcher) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	b.pending = 0
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *reloadBatcher) flush() {
	b.mu.Lock()
	events := b.pending
	b.pending = 0
	stopped := b.stopped
	b.mu.Unlock()

	if stopped || events == 0 {
		return
	}

	b.reloading.Lock()
	defer b.reloading.Unlock()

	if err := b.store.Reload(); err != nil {
		if b.logger != nil {
			b.logger.Warn("model reload failed, keeping previous artifact",
				"path", b.store.Path(), "events", events, "error", err)
		}
		return
	}
	if b.logger != nil {
		b.logger.Info("model artifact reloaded", "path", b.store.Path(), "events", events)
	}
}
