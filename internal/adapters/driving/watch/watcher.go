// Package watch re-ingests a course folder when its files change.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event
// before re-ingesting, so editors that write in several steps trigger
// one pass instead of many.
const DefaultDebounce = 2 * time.Second

// Watcher re-runs folder ingestion whenever course scripts change.
type Watcher struct {
	ingest   driving.IngestService
	debounce time.Duration
}

// NewWatcher creates a watcher over the given ingest service.
// A non-positive debounce falls back to the default.
func NewWatcher(ingest driving.IngestService, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{ingest: ingest, debounce: debounce}
}

// Run watches dir until the context is cancelled. Each burst of create,
// write or rename events triggers one folder ingestion after the
// debounce window closes.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for course changes", dir)

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Change detected: %s", event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			courses, chunks, err := w.ingest.AddCourseFolder(ctx, dir)
			if err != nil {
				logger.Warn("Re-ingest failed: %v", err)
				continue
			}
			if courses > 0 {
				logger.Info("Re-ingest added %d courses (%d chunks)", courses, chunks)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
