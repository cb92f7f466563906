package config

import "time"

// Config is the immutable engine configuration handed to every operation.
type Config struct {
	Source   SourceConfig   `koanf:"source"`
	Backup   BackupConfig   `koanf:"backup"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Reload   ReloadConfig   `koanf:"reload"`
}

type SourceConfig struct {
	Path string `koanf:"path"` // overrides File when set
	File string `koanf:"file"` // paths file, first usable line is the source
}

type BackupConfig struct {
	Root string `koanf:"root"`
	Max  int    `koanf:"max"`
}

type ScheduleConfig struct {
	Interval time.Duration `koanf:"interval"`
	Cron     string        `koanf:"cron"` // takes precedence over Interval
}

type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "text", "json"
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type ReloadConfig struct {
	Mode      string        `koanf:"mode"` // "auto", "fsnotify", "poll", "off"
	Poll      time.Duration `koanf:"poll"`
	Debounce  time.Duration `koanf:"debounce"`
	Stability time.Duration `koanf:"stability"`
}

const (
	DefaultPathsFile  = "paths.txt"
	DefaultBackupRoot = "CopiedFiles"
	DefaultMax        = 10
	DefaultInterval   = 30 * time.Minute
)

func Default() Config {
	return Config{
		Source: SourceConfig{File: DefaultPathsFile},
		Backup: BackupConfig{Root: DefaultBackupRoot, Max: DefaultMax},
		Schedule: ScheduleConfig{
			Interval: DefaultInterval,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Reload: ReloadConfig{
			Mode:      "auto",
			Poll:      5 * time.Second,
			Debounce:  500 * time.Millisecond,
			Stability: 200 * time.Millisecond,
		},
	}
}

// defaultMap mirrors Default in the shape the loader merges.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"source": map[string]any{
			"path": d.Source.Path,
			"file": d.Source.File,
		},
		"backup": map[string]any{
			"root": d.Backup.Root,
			"max":  d.Backup.Max,
		},
		"schedule": map[string]any{
			"interval": d.Schedule.Interval,
			"cron":     d.Schedule.Cron,
		},
		"log": map[string]any{
			"level":  d.Log.Level,
			"format": d.Log.Format,
		},
		"metrics": map[string]any{
			"addr": d.Metrics.Addr,
		},
		"reload": map[string]any{
			"mode":      d.Reload.Mode,
			"poll":      d.Reload.Poll,
			"debounce":  d.Reload.Debounce,
			"stability": d.Reload.Stability,
		},
	}
}
