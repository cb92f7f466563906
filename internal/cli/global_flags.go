package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/InfernoTsugikuni/FlameUp/internal/config"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
)

// addGlobalFlags adds the persistent flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("settings", "", "YAML settings file")
	pf.StringP("path", "p", "", "Source path to back up (overrides the paths file)")
	pf.StringP("config", "c", config.DefaultPathsFile, "Paths file containing the source path")
	pf.StringP("output", "o", config.DefaultBackupRoot, "Backup output directory")
	pf.IntP("max", "m", config.DefaultMax, "Maximum number of backups to keep")
	pf.BoolP("verbose", "v", false, "Verbose logging (same as --log-level debug)")
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.String("log-format", "text", "Log format: text|json")
}

// flagOverride maps a changed flag onto a settings key.
type flagOverride struct {
	flag    string
	section string
	key     string
}

var globalOverrides = []flagOverride{
	{"path", "source", "path"},
	{"config", "source", "file"},
	{"output", "backup", "root"},
	{"log-level", "log", "level"},
	{"log-format", "log", "format"},
}

type overrides map[string]any

func (o overrides) set(section, key string, v any) {
	sec, _ := o[section].(map[string]any)
	if sec == nil {
		sec = map[string]any{}
		o[section] = sec
	}
	sec[key] = v
}

// collectOverrides turns explicitly set flags into the highest priority
// configuration layer. Flags left at their defaults do not mask the
// settings file or environment.
func collectOverrides(cmd *cobra.Command) (overrides, error) {
	flags := cmd.Flags()
	o := overrides{}

	for _, f := range globalOverrides {
		if !flags.Changed(f.flag) {
			continue
		}
		v, err := flags.GetString(f.flag)
		if err != nil {
			return nil, err
		}
		o.set(f.section, f.key, v)
	}

	if flags.Changed("max") {
		v, err := flags.GetInt("max")
		if err != nil {
			return nil, err
		}
		o.set("backup", "max", v)
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		o.set("log", "level", "debug")
	}
	return o, nil
}

// newLoader builds the configuration loader for cmd. extra adds
// subcommand-specific overrides.
func newLoader(cmd *cobra.Command, extra func(overrides) error) (*config.Loader, error) {
	o, err := collectOverrides(cmd)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		if err := extra(o); err != nil {
			return nil, err
		}
	}
	settings, _ := cmd.Flags().GetString("settings")
	return config.NewLoader(
		config.WithSettingsFile(settings),
		config.WithOverrides(o),
	), nil
}

func newLogger(cfg config.Config, stderr io.Writer) (*logging.SlogLogger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: stderr,
	})
}

// setup loads the configuration and the logger for a one-shot command.
func setup(cmd *cobra.Command, stderr io.Writer) (config.Config, *logging.SlogLogger, error) {
	loader, err := newLoader(cmd, nil)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
