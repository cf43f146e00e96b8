// Package watch triggers redeployments when the manifest changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save bursts into one deployment
const DefaultDebounce = 2 * time.Second

// Watcher redeploys when the watched file is modified
type Watcher struct {
	// Path is the file to watch, typically the deploy manifest
	Path string

	// Debounce is how long to wait after the last change before firing
	Debounce time.Duration

	// OnChange runs after the debounce window closes. Its error is
	// reported through OnError but does not stop the watcher.
	OnChange func(ctx context.Context) error

	// OnError receives OnChange failures and watcher-level problems
	OnError func(err error)
}

// Run watches until the context is canceled
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return fmt.Errorf("watcher requires an OnChange callback")
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory: editors replace files on save, which would
	// drop a watch on the file itself
	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.Path)

	var timer *time.Timer

	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil

			if err := w.OnChange(ctx); err != nil && w.OnError != nil {
				w.OnError(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}
