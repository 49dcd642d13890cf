package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce coalesces the burst of events an editor produces on save.
var Debounce = 150 * time.Millisecond

// Watch reloads path whenever it changes and hands each valid, normalized
// config to apply. Invalid files are logged and skipped; the previous config
// stays in force. The parent directory is watched so that atomic
// rename-over saves are seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, log *slog.Logger, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed creating file watcher: %w", err)
	}
	defer w.Close()

	name := filepath.Clean(path)
	if err := w.Add(filepath.Dir(name)); err != nil {
		return fmt.Errorf("config: watch %s: %w", name, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(Debounce)
				fire = timer.C
			} else {
				timer.Reset(Debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "err", err)
		case <-fire:
			cfg, err := LoadValid(name)
			if err != nil {
				log.Error("config reload rejected", "path", name, "err", err)
				continue
			}
			log.Info("config reloaded", "path", name, "devices", len(cfg.Devices))
			apply(cfg)
		}
	}
}
