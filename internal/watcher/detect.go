package watcher

import (
	"os"

	"github.com/InfernoTsugikuni/FlameUp/internal/config"
)

// detect reloads when the settings file has a newer modtime and has stopped changing.
func (w *Watcher) detect() {
	w.mu.RLock()
	path := w.path
	last := w.lastModTime
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		w.log.Debug("settings file not readable", "path", path, "error", err)
		return
	}

	mod := info.ModTime()
	if !mod.After(last) {
		return
	}

	if !w.isStable() {
		w.log.Debug("settings file still changing", "path", path)
		return
	}

	w.mu.Lock()
	w.lastModTime = mod
	w.mu.Unlock()

	_, _ = w.Reload()
}

// Reload loads the configuration and hands it to the scheduler. Invalid
// settings are logged and dropped, keeping the current configuration.
func (w *Watcher) Reload() (config.Config, error) {
	cfg, err := w.loader.Load()
	if err != nil {
		w.log.Error("settings reload rejected", "error", err)
		return config.Config{}, err
	}

	w.UpdateConfig(cfg.Reload)
	w.mb.Put(cfg)
	w.log.Info("settings reloaded", "root", cfg.Backup.Root, "max", cfg.Backup.Max)
	return cfg, nil
}
