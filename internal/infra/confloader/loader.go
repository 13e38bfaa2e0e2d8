package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix scopes the variables read by the companylock CLI. The
// devserver passes its own prefix through WithEnvPrefix.
const DefaultEnvPrefix = "COMPANYLOCK_"

// COMPANYLOCK_SESSION__KEY_FILE nests, COMPANYLOCK_API_BASE does not.
const envNestSeparator = "__"

// Loader layers defaults, the YAML config file, prefixed environment
// variables and explicitly set flags into one koanf tree. One Loader serves
// one Load; the devserver builds a fresh one for every log-level reload.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	defaults  map[string]any
	flags     map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile names the YAML file layered over the defaults. A missing
// file is an error; callers skip the option when no file was configured.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDefaults sets the lowest-priority values, keyed by dotted path.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// WithFlags sets the highest-priority values, keyed by dotted path.
// Pass only flags the user set, or their defaults mask the file and env.
func WithFlags(flags map[string]any) Option {
	return func(l *Loader) {
		l.flags = flags
	}
}

// NewLoader returns a Loader reading COMPANYLOCK_ variables unless an
// option says otherwise.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load merges every source in priority order and decodes the result into
// target using its koanf tags.
func (l *Loader) Load(target any) error {
	if len(l.defaults) > 0 {
		if err := l.LoadMap(l.defaults); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if len(l.flags) > 0 {
		if err := l.LoadMap(l.flags); err != nil {
			return fmt.Errorf("load flags: %w", err)
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return nil
}

// LoadFile layers a YAML file over what is loaded so far.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	provider := file.Provider(path)
	if err := l.k.Load(provider, yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv layers the prefixed environment, for example
// COMPANYLOCK_DEVSERVER_RATE_LIMIT__RPS=5 sets rate_limit.rps on the
// devserver.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, ".", func(s string) string {
		return EnvKey(l.envPrefix, s)
	})
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// EnvKey turns COMPANYLOCK_SESSION__KEY_FILE into session.key_file.
func EnvKey(prefix, name string) string {
	s := strings.TrimPrefix(name, prefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, envNestSeparator, ".")
}

// LoadMap layers a map of dotted keys such as "session.backend".
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal decodes the merged tree into target.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns the raw value at key, or nil when no source set it. The
// devserver keeps its built-in employee seed when seed.employees is nil.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// GetString returns key as a string.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetBool returns key as a bool.
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}
