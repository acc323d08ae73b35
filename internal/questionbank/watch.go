package questionbank

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the bank at path on every write and passes each bank that parses
// cleanly to apply. Invalid edits are logged and the previous bank stays in use.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(*Bank)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create question bank watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	// Watch the directory so editors that replace the file are still observed.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			bank, err := Load(target)
			if err != nil {
				logger.Warn("question bank reload rejected", "path", target, "error", err.Error())
				continue
			}
			logger.Info("question bank reloaded", "path", target, "roles", len(bank.roles), "questions", bank.Total())
			apply(bank)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("question bank watcher error", "error", err.Error())
		}
	}
}
