package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay collapses bursts of file events into one reload.
var DebounceDelay = 500 * time.Millisecond

// Watch reloads the catalog whenever the file changes on disk and then calls
// onChange, which may be nil. It blocks until ctx is done.
//
// The directory is watched rather than the file because saves replace the
// file by renaming over it.
func (c *Catalog) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(c.path)
	reload := make(chan struct{}, 1)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			c.log.Debug("catalog file event", "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(DebounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("catalog watcher error", "error", err)
		case <-reload:
			if err := c.Reload(); err != nil {
				c.log.Error("failed to reload catalog", "error", err)
				continue
			}
			c.log.Info("catalog reloaded", "entries", c.Len())
			if onChange != nil {
				onChange()
			}
		}
	}
}
