package settings

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 500 * time.Millisecond

// Live serves the most recently loaded snapshot. Readers never block writers; each
// Lookup sees one whole snapshot.
type Live struct {
	current atomic.Pointer[Map]
}

// NewLive returns a Live view starting at initial.
func NewLive(initial Map) *Live {
	l := &Live{}
	l.Store(initial)
	return l
}

// Store replaces the current snapshot.
func (l *Live) Store(m Map) {
	if m == nil {
		m = Map{}
	}
	l.current.Store(&m)
}

// Snapshot returns the current snapshot.
func (l *Live) Snapshot() Map {
	if p := l.current.Load(); p != nil {
		return *p
	}
	return Map{}
}

// Lookup reads key from the current snapshot.
func (l *Live) Lookup(key string) (any, bool) {
	return l.Snapshot().Lookup(key)
}

// Watch reloads path through load whenever it changes, until ctx is cancelled. Load
// failures keep the previous snapshot and are logged.
func (l *Live) Watch(ctx context.Context, path string, load func(string) (Map, error), logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	reload := make(chan struct{}, 1)
	go l.handleWatcher(ctx, watcher, filepath.Clean(path), reload, logger)
	go l.scheduleReload(ctx, reload, func() {
		m, err := load(path)
		if err != nil {
			logger.Warn("settings reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		l.Store(m)
		logger.Info("settings reloaded", zap.String("path", path), zap.Int("keys", len(m)))
	})
	return nil
}

func (l *Live) handleWatcher(ctx context.Context, watcher *fsnotify.Watcher, path string, reload chan<- struct{}, logger *zap.Logger) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("settings watcher error", zap.Error(err))
		}
	}
}

func (l *Live) scheduleReload(ctx context.Context, reload <-chan struct{}, callback func()) {
	var timer *time.Timer
	var c <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-reload:
			if timer != nil {
				timer.Reset(reloadDebounce)
			} else {
				timer = time.NewTimer(reloadDebounce)
				c = timer.C
			}
		case <-c:
			c = nil
			timer = nil
			callback()
		}
	}
}
