package watcher

import (
	"github.com/InfernoTsugikuni/FlameUp/internal/config"
)

// UpdateConfig applies reloaded timings. The mode and path are fixed at start.
func (w *Watcher) UpdateConfig(cfg config.ReloadConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode == "" {
		w.mode = cfg.Mode
	}
	w.interval = cfg.Poll
	w.debounce = cfg.Debounce
	w.stability = cfg.Stability

	if w.interval <= 0 {
		w.interval = config.Default().Reload.Poll
	}
}
