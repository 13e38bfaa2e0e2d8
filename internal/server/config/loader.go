package config

import (
	"fmt"

	"github.com/NDP4/CompanyLock-Manager/internal/infra/confloader"
)

// EnvPrefix scopes the environment variables read by the server.
const EnvPrefix = "COMPANYLOCK_DEVSERVER_"

// Load resolves defaults, the optional file, the environment and flags,
// then validates the result.
func Load(path string, flags map[string]any) (*ServerConfig, error) {
	cfg := Default()

	// A configured employee list replaces the demo directory rather than
	// merging with it.
	seeds := cfg.Seed.Employees
	cfg.Seed.Employees = nil

	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithFlags(flags),
	}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if loader.Get("seed.employees") == nil {
		cfg.Seed.Employees = seeds
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
