package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of environment overrides, e.g. FLAMEUP_BACKUP_ROOT.
const DefaultEnvPrefix = "FLAMEUP_"

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

var errReadNotSupported = errors.New("config: Read not supported by byte provider")

// expandFile is a koanf provider that reads a settings file and expands
// $(VAR) placeholders before parsing.
type expandFile string

func (f expandFile) ReadBytes() ([]byte, error) {
	data, err := file.Provider(string(f)).ReadBytes()
	if err != nil {
		return nil, err
	}
	return []byte(expandEnvVars(string(data))), nil
}

func (f expandFile) Read() (map[string]any, error) {
	return nil, errReadNotSupported
}

// mapProvider loads nested maps such as defaults and flag overrides.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: ReadBytes not supported by map provider")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// Loader layers defaults, the settings file, the environment and flag
// overrides, in increasing priority.
type Loader struct {
	envPrefix string
	filePath  string
	overrides map[string]any
}

type Option func(*Loader)

func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithSettingsFile sets the YAML settings file. An empty path loads none.
func WithSettingsFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets the highest priority layer, keyed like the settings
// file (e.g. {"backup": {"max": 3}}).
func WithOverrides(m map[string]any) Option {
	return func(l *Loader) {
		l.overrides = m
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) SettingsFile() string {
	return l.filePath
}

// Load runs the full precedence chain and verifies the result. Every call
// starts from a fresh state, so it doubles as a reload.
func (l *Loader) Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaultMap()), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if l.filePath != "" {
		if err := k.Load(expandFile(l.filePath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading settings file %s: %w", l.filePath, err)
		}
	}

	// FLAMEUP_BACKUP_ROOT -> backup.root
	prefix := l.envPrefix
	transform := func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	if err := k.Load(env.Provider(prefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := k.Load(mapProvider(l.overrides), nil); err != nil {
			return Config{}, fmt.Errorf("loading overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := Verify(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
