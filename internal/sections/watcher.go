package sections

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/prism-labs/memogen/internal/logger"
)

// debounce coalesces the editor write bursts fsnotify reports for a
// single save.
const debounce = 200 * time.Millisecond

// Watch reloads the catalogue whenever the override file changes.
// It blocks until the context is cancelled. A reload that fails to
// parse keeps the previous catalogue.
func (c *Catalogue) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on
	// save, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Debug("Watching section catalogue: %s", path)

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
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			c.reloadFrom(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Section catalogue watcher error: %v", err)
		}
	}
}

// reloadFrom re-reads the override file and swaps in its definitions.
func (c *Catalogue) reloadFrom(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Section catalogue reload failed: %v", err)
		return
	}

	defs, err := parse(data)
	if err != nil {
		logger.Warn("Section catalogue reload rejected: %v", err)
		return
	}

	c.replace(defs)
	logger.Info("Section catalogue reloaded: %d sections", len(defs))
}
