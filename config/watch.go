package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the file on change and calls fn with the fresh configuration
// until ctx is cancelled. Editors often replace files rather than write them
// in place, so rename and create events on the watched name count as changes
// too. Intended for development; production deployments restart instead.
func Watch(ctx context.Context, path string, logger *zap.Logger, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: watching the file itself breaks on replace.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watching %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	var debounce *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("path", path))
		fn(cfg)
	}

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
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce the burst of events a single save produces.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
