// Package watcher notifies when a single file changes on disk, coalescing
// bursts of writes into one signal.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/textstate/internal/log"
)

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns the watcher defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Debounce: 200 * time.Millisecond,
	}
}

// Watch starts watching cfg.Path. The returned channel receives a value once
// the file has been quiet for cfg.Debounce after a write, and is closed when
// ctx is done.
//
// The parent directory is watched rather than the file: editors that save by
// renaming a temp file over the target would otherwise drop the watch.
func Watch(ctx context.Context, cfg Config) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	path := filepath.Clean(cfg.Path)
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer func() { _ = fsw.Close() }()
		settle(ctx, fsw, path, cfg.Debounce, changes)
	}()

	log.Debug(log.CatWatch, "watching file", "path", path, "debounce", cfg.Debounce)
	return changes, nil
}

func settle(ctx context.Context, fsw *fsnotify.Watcher, path string, debounce time.Duration, out chan<- struct{}) {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if touches(event, path) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			// A pending signal already covers this change.
			select {
			case out <- struct{}{}:
			default:
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatch, "watch error", err, "path", path)
		}
	}
}

// touches reports whether event writes or (re)creates path.
func touches(event fsnotify.Event, path string) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	return filepath.Clean(event.Name) == path
}
