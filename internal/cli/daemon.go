package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
	"github.com/InfernoTsugikuni/FlameUp/internal/config"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
	"github.com/InfernoTsugikuni/FlameUp/internal/mailbox"
	"github.com/InfernoTsugikuni/FlameUp/internal/metrics"
	"github.com/InfernoTsugikuni/FlameUp/internal/scheduler"
	"github.com/InfernoTsugikuni/FlameUp/internal/watcher"
)

func newDaemonCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Create backups on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := newLoader(cmd, daemonOverrides(cmd))
			if err != nil {
				return err
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDaemon(ctx, loader, cfg, log, stdout)
		},
	}

	f := cmd.Flags()
	f.StringP("interval", "i", "30", "Backup interval: minutes, or a duration such as 90s or 2h")
	f.String("cron", "", "Standard 5-field cron expression, overrides --interval")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	f.String("reload", "", "Settings reload mode: auto|fsnotify|poll|off")
	return cmd
}

func daemonOverrides(cmd *cobra.Command) func(overrides) error {
	return func(o overrides) error {
		flags := cmd.Flags()
		if flags.Changed("interval") {
			raw, _ := flags.GetString("interval")
			d, err := config.ParseInterval(raw)
			if err != nil {
				return err
			}
			o.set("schedule", "interval", d)
		}
		for _, f := range []flagOverride{
			{"cron", "schedule", "cron"},
			{"metrics-addr", "metrics", "addr"},
			{"reload", "reload", "mode"},
		} {
			if flags.Changed(f.flag) {
				v, _ := flags.GetString(f.flag)
				o.set(f.section, f.key, v)
			}
		}
		return nil
	}
}

// announcer prints the outcome of each scheduled create to stdout.
type announcer struct {
	engine *backup.Engine
	out    io.Writer
}

func (a announcer) Create(ctx context.Context, cfg config.Config) (backup.Result, error) {
	res, err := a.engine.Create(ctx, cfg)
	if err != nil {
		fmt.Fprintf(a.out, "✗ Backup failed: %v\n", err)
		return res, err
	}
	fmt.Fprintf(a.out, "✓ Created backup: %s\n", res.ID)
	return res, nil
}

func runDaemon(ctx context.Context, loader *config.Loader, cfg config.Config, log *logging.SlogLogger, stdout io.Writer) error {
	fmt.Fprintln(stdout, "Starting backup daemon...")
	fmt.Fprintf(stdout, "Schedule: %s\n", scheduler.Describe(cfg.Schedule))
	fmt.Fprintf(stdout, "Max backups: %d\n", cfg.Backup.Max)
	fmt.Fprintf(stdout, "Backup directory: %s\n", cfg.Backup.Root)
	fmt.Fprintln(stdout, "Press Ctrl+C to stop...")
	fmt.Fprintln(stdout)

	reloads := mailbox.New[config.Config]()
	w := watcher.New(loader.SettingsFile(), cfg.Reload, loader, log, reloads)

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("settings watcher stopped", "error", err)
		}
	}()

	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				log.Info("SIGHUP received, reloading settings")
				_, _ = w.Reload()
			}
		}
	}()

	opts := []scheduler.Option{
		scheduler.WithReloads(reloads),
		scheduler.WithReloadHook(func(c config.Config) {
			if err := log.SetLevel(c.Log.Level); err != nil {
				log.Warn("ignoring reloaded log level", "error", err)
			}
		}),
	}

	if cfg.Metrics.Addr != "" {
		reg := metrics.NewRegistry()
		opts = append(opts, scheduler.WithRecorder(reg))
		go func() {
			if err := reg.Serve(ctx, cfg.Metrics.Addr, log); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	creator := announcer{engine: backup.New(log, nil), out: stdout}
	if err := scheduler.New(creator, log, opts...).Run(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Daemon stopped.")
	return nil
}
