package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the config file on change and invokes onReload with the
// freshly loaded config. Only runtime-adjustable settings (log level)
// should be applied by callers; listener and database changes need a
// restart. Events are debounced because editors fire several writes per
// save. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *zap.Logger, onReload func(*Config)) error {
	if path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save
	// and the inode-level watch would silently die.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var debounce *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed, keeping previous config", zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("path", path))
		onReload(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
