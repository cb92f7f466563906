package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
)

// ErrInvalid marks configuration errors, reported before any I/O.
var ErrInvalid = errors.New("invalid configuration")

// MinInterval is the shortest accepted schedule interval.
const MinInterval = time.Second

func Verify(cfg Config) error {
	if cfg.Backup.Root == "" {
		return fmt.Errorf("%w: backup root is empty", ErrInvalid)
	}
	if cfg.Backup.Max < 0 {
		return fmt.Errorf("%w: backup max must not be negative, got %d", ErrInvalid, cfg.Backup.Max)
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("%w: schedule cron %q: %v", ErrInvalid, cfg.Schedule.Cron, err)
		}
	} else if cfg.Schedule.Interval < MinInterval {
		return fmt.Errorf("%w: schedule interval must be at least %s, got %s", ErrInvalid, MinInterval, cfg.Schedule.Interval)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, cfg.Log.Format)
	}

	switch cfg.Reload.Mode {
	case "", "auto", "fsnotify", "poll", "off":
	default:
		return fmt.Errorf("%w: unknown reload mode %q", ErrInvalid, cfg.Reload.Mode)
	}
	return nil
}
