package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/InfernoTsugikuni/FlameUp/internal/config"
)

// every activates exactly d after the previous start. cron.Every rounds to
// whole seconds, which would skew drift correction.
type every struct {
	d time.Duration
}

func (e every) Next(t time.Time) time.Time {
	return t.Add(e.d)
}

// Every returns a plan that fires d after each start.
func Every(d time.Duration) cron.Schedule {
	return every{d: d}
}

// PlanFor builds the activation plan for a schedule. A cron expression
// takes precedence over the interval.
func PlanFor(sc config.ScheduleConfig) (cron.Schedule, error) {
	if sc.Cron != "" {
		plan, err := cron.ParseStandard(sc.Cron)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule cron %q: %v", config.ErrInvalid, sc.Cron, err)
		}
		return plan, nil
	}
	if sc.Interval <= 0 {
		return nil, fmt.Errorf("%w: schedule interval must be positive, got %s", config.ErrInvalid, sc.Interval)
	}
	return Every(sc.Interval), nil
}

// Describe renders a schedule for log lines and the daemon banner.
func Describe(sc config.ScheduleConfig) string {
	if sc.Cron != "" {
		return "cron " + sc.Cron
	}
	return "every " + sc.Interval.String()
}
