// Package config loads server settings and environment profiles. Settings
// come from a YAML file plus environment variables (env always wins);
// passwords come only from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is tried when no explicit path is given.
const DefaultConfigPath = "config.yaml"

// Config holds all process configuration.
type Config struct {
	// Env selects logger behavior ("local" gets a development logger).
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Transport is "stdio" or "http".
	Transport string `yaml:"transport" env:"TRANSPORT" env-default:"stdio"`
	BindAddr  string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port      string `yaml:"port" env:"PORT" env-default:"8787"`

	// ProfilesPath points at the YAML file declaring environment profiles.
	ProfilesPath string `yaml:"profiles_path" env:"PROFILES_PATH" env-default:"profiles.yaml"`

	Query QueryConfig `yaml:"query"`
	Pool  PoolConfig  `yaml:"pool"`

	Version string `yaml:"-"`
}

// QueryConfig bounds every query the server runs.
type QueryConfig struct {
	// MaxRows is the default row cap injected into unbounded queries.
	MaxRows int `yaml:"max_rows" env:"QUERY_MAX_ROWS" env-default:"100"`
	// TimeoutSeconds is the execution deadline for one query.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"QUERY_TIMEOUT_SECONDS" env-default:"30"`
}

// PoolConfig sizes the per-profile connection pools.
type PoolConfig struct {
	MaxConns           int `yaml:"max_conns" env:"POOL_MAX_CONNS" env-default:"10"`
	MaxIdleConns       int `yaml:"max_idle_conns" env:"POOL_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxIdleMinutes int `yaml:"conn_max_idle_minutes" env:"POOL_CONN_MAX_IDLE_MINUTES" env-default:"5"`
}

// Load reads configuration from path (or DefaultConfigPath when empty) and
// the environment. A missing config file is not an error; env defaults apply.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	}

	if cfg.Transport != "stdio" && cfg.Transport != "http" {
		return nil, fmt.Errorf("invalid transport %q (must be stdio or http)", cfg.Transport)
	}

	cfg.Version = version
	return &cfg, nil
}
