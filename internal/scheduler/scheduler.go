// Package scheduler runs backup creates on a drift-corrected schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
	"github.com/InfernoTsugikuni/FlameUp/internal/config"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
	"github.com/InfernoTsugikuni/FlameUp/internal/mailbox"
)

// Creator performs one backup. *backup.Engine satisfies it.
type Creator interface {
	Create(ctx context.Context, cfg config.Config) (backup.Result, error)
}

// Recorder receives the outcome of every cycle.
type Recorder interface {
	ObserveCycle(res backup.Result, err error, elapsed time.Duration)
}

type Scheduler struct {
	creator  Creator
	log      logging.Logger
	clock    Clock
	recorder Recorder
	reloads  *mailbox.Mailbox[config.Config]
	onReload func(config.Config)
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithReloads makes the scheduler pick up configurations posted to mb.
func WithReloads(mb *mailbox.Mailbox[config.Config]) Option {
	return func(s *Scheduler) {
		s.reloads = mb
	}
}

// WithReloadHook is called with every configuration the scheduler adopts.
func WithReloadHook(fn func(config.Config)) Option {
	return func(s *Scheduler) {
		s.onReload = fn
	}
}

func New(creator Creator, log logging.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		creator: creator,
		log:     log,
		clock:   realClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run creates a backup, then waits until the plan's next activation measured
// from that cycle's start. A cycle that overruns its slot is followed
// immediately by the next one. Failed creates are logged and the loop goes
// on. Run returns when ctx is done.
func (s *Scheduler) Run(ctx context.Context, cfg config.Config) error {
	plan, err := PlanFor(cfg.Schedule)
	if err != nil {
		return err
	}

	log := s.log.With("run_id", uuid.NewString())
	log.Info("daemon started", "schedule", Describe(cfg.Schedule), "root", cfg.Backup.Root, "max", cfg.Backup.Max)

	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			log.Info("daemon stopped", "cycles", cycle-1)
			return nil
		}

		cfg, plan = s.adoptReload(log, cfg, plan)

		start := s.clock.Now()
		res, err := s.creator.Create(ctx, cfg)
		elapsed := s.clock.Now().Sub(start)

		if s.recorder != nil {
			s.recorder.ObserveCycle(res, err, elapsed)
		}
		if err != nil {
			log.Error("backup cycle failed", "cycle", cycle, "error", err, "elapsed", elapsed)
		} else {
			log.Info("backup cycle complete", "cycle", cycle, "id", res.ID, "evicted", len(res.Evicted), "elapsed", elapsed)
		}

		if !s.waitNext(ctx, log, start, &cfg, &plan) {
			log.Info("daemon stopped", "cycles", cycle)
			return nil
		}
	}
}

// waitNext blocks until the plan's next activation after start. A reload
// arriving meanwhile re-plans from the same start. It returns false if ctx
// ended first.
func (s *Scheduler) waitNext(ctx context.Context, log logging.Logger, start time.Time, cfg *config.Config, plan *cron.Schedule) bool {
	var ready <-chan struct{}
	if s.reloads != nil {
		ready = s.reloads.Ready()
	}

	next := (*plan).Next(start)
	if !next.After(s.clock.Now()) {
		log.Warn("cycle overran its slot, starting next immediately", "planned", next)
		return ctx.Err() == nil
	}
	log.Debug("next backup scheduled", "at", next)

	for {
		if s.reloads != nil && s.reloads.Pending() {
			*cfg, *plan = s.adoptReload(log, *cfg, *plan)
			next = (*plan).Next(start)
		}

		d := next.Sub(s.clock.Now())
		if d <= 0 {
			return ctx.Err() == nil
		}

		select {
		case <-ctx.Done():
			return false
		case <-s.clock.After(d):
		case <-ready:
		}
	}
}

// adoptReload swaps in a pending configuration. A reload whose schedule
// cannot be planned keeps the current plan.
func (s *Scheduler) adoptReload(log logging.Logger, cfg config.Config, plan cron.Schedule) (config.Config, cron.Schedule) {
	if s.reloads == nil {
		return cfg, plan
	}
	v := s.reloads.TryTake()
	if v == nil {
		return cfg, plan
	}

	newPlan, err := PlanFor(v.Schedule)
	if err != nil {
		log.Error("reloaded schedule rejected, keeping current", "error", err)
		return cfg, plan
	}
	log.Info("configuration reloaded", "schedule", Describe(v.Schedule), "root", v.Backup.Root, "max", v.Backup.Max)
	if s.onReload != nil {
		s.onReload(*v)
	}
	return *v, newPlan
}
