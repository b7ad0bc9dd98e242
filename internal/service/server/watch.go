package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 200 * time.Millisecond

// watchSettings calls apply with freshly loaded settings whenever path changes.
// Invalid settings are logged and skipped. It blocks until ctx is done.
func watchSettings(ctx context.Context, path string, apply func(context.Context, *config.Config)) error {
	ctx = logger.WithName(ctx, "settings-watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close settings watcher", "error", closeErr)
		}
	}()

	// Watch the directory: editors often replace the file instead of writing it.
	target := filepath.Clean(path)
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	defer timer.Stop()

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

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.DebugKV(ctx, "Settings file changed", "op", event.Op.String())
				timer.Reset(reloadDelay)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Settings watcher error", "error", watchErr)
		case <-timer.C:
			settings, loadErr := config.Load(target)
			if loadErr != nil {
				logger.WarnKV(ctx, "Ignoring invalid settings", "path", target, "error", loadErr)
				continue
			}

			apply(ctx, settings)
		}
	}
}
