package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NDP4/CompanyLock-Manager/internal/infra/confloader"
)

// Load resolves the CLI configuration. A missing file is not an error.
// flags holds only the values the user set, keyed by dotted path.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{
		confloader.WithDefaults(defaults()),
		confloader.WithFlags(flags),
	}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := &CLIConfig{}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, readable only by the owner.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

// defaults flattens Default() into dotted keys for the loader.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"server":           d.Server,
		"api_base":         d.APIBase,
		"timeout":          d.Timeout.String(),
		"output":           d.Output,
		"ca_file":          d.CAFile,
		"session.backend":  d.Session.Backend,
		"session.path":     d.Session.Path,
		"session.key_file": d.Session.KeyFile,
		"rate_limit.rps":   d.RateLimit.RPS,
		"rate_limit.burst": d.RateLimit.Burst,
		"log.level":        d.Log.Level,
		"log.format":       d.Log.Format,
		"history_file":     d.HistoryFile,
	}
}
