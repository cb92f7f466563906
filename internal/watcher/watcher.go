// Package watcher reloads the daemon settings when the settings file changes.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/InfernoTsugikuni/FlameUp/internal/config"
	"github.com/InfernoTsugikuni/FlameUp/internal/fsprobe"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
	"github.com/InfernoTsugikuni/FlameUp/internal/mailbox"
)

// Loader re-runs the configuration precedence chain.
type Loader interface {
	Load() (config.Config, error)
}

// Watcher observes the settings file and posts each valid reload to a mailbox.
type Watcher struct {
	mu sync.RWMutex

	path      string
	mode      string
	interval  time.Duration
	debounce  time.Duration
	stability time.Duration

	lastModTime time.Time

	loader Loader
	log    logging.Logger
	mb     *mailbox.Mailbox[config.Config]
}

// New creates a watcher for the settings file at path. An empty path
// disables file watching; Reload still works.
func New(path string, cfg config.ReloadConfig, loader Loader, log logging.Logger, mb *mailbox.Mailbox[config.Config]) *Watcher {
	w := &Watcher{
		path:   path,
		loader: loader,
		log:    log,
		mb:     mb,
	}
	w.UpdateConfig(cfg)

	if path != "" {
		if info, err := os.Stat(path); err == nil {
			w.lastModTime = info.ModTime()
		}
	}
	return w
}

// Start chooses the watching strategy from the reload mode and blocks until
// ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.RLock()
	mode := w.mode
	path := w.path
	w.mu.RUnlock()

	if path == "" || mode == "off" {
		w.log.Debug("settings watch disabled", "path", path, "mode", mode)
		return nil
	}

	switch mode {
	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "auto", "":
		res := fsprobe.Probe(filepath.Dir(path), 0)
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling settings file", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("watcher: unknown mode %q", mode)
	}
}
