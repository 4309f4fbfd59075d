// Package config loads server settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "evidenca.yaml"

// Config holds the server settings.
type Config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"dbPath"`
	LogLevel    string `yaml:"logLevel"`
	LogPath     string `yaml:"logPath"`
	LoanDays    int    `yaml:"loanDays"`
	BusyRetries int    `yaml:"busyRetries"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "evidenca.sqlite3",
		LogLevel:    "info",
		LoanDays:    14,
		BusyRetries: 5,
	}
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("EVIDENCA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("EVIDENCA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("EVIDENCA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EVIDENCA_LOG"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("EVIDENCA_LOAN_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: EVIDENCA_LOAN_DAYS: %w", err)
		}
		cfg.LoanDays = n
	}
	return nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.DBPath == "" {
		return errors.New("config: dbPath is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logLevel %q (want debug, info, warn or error)", c.LogLevel)
	}
	if c.LoanDays < 1 {
		return fmt.Errorf("config: loanDays must be at least 1, got %d", c.LoanDays)
	}
	if c.BusyRetries < 1 {
		return fmt.Errorf("config: busyRetries must be at least 1, got %d", c.BusyRetries)
	}
	return nil
}
