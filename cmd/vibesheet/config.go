package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mgomes/vibesheet/formula"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "vibesheet.yaml"

// Config is the CLI configuration file. Flags override anything set here.
type Config struct {
	Rows        int    `yaml:"rows"`
	Columns     int    `yaml:"columns"`
	MaxDepth    int    `yaml:"max_depth"`
	EagerRecalc bool   `yaml:"eager_recalc"`
	LogLevel    string `yaml:"log_level"`
}

func Defaults() *Config {
	return &Config{
		Rows:        100,
		Columns:     26,
		MaxDepth:    1000,
		EagerRecalc: true,
		LogLevel:    "warning",
	}
}

// LoadConfig reads configPath with ${VAR} interpolation. An empty configPath
// falls back to ./vibesheet.yaml, and a missing default file yields Defaults.
func LoadConfig(configPath string, getenv func(string) string) (*Config, error) {
	path := configPath
	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if configPath == "" && errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string
	if c.Rows < 1 {
		errs = append(errs, fmt.Sprintf("invalid rows: %d (must be positive)", c.Rows))
	}
	if c.Columns < 1 {
		errs = append(errs, fmt.Sprintf("invalid columns: %d (must be positive)", c.Columns))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("invalid max_depth: %d (must be positive)", c.MaxDepth))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log_level: %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// sheetConfig translates the CLI settings into an engine configuration.
func (c *Config) sheetConfig() formula.Config {
	return formula.Config{
		Rows:     c.Rows,
		Columns:  c.Columns,
		MaxDepth: c.MaxDepth,
		Lazy:     !c.EagerRecalc,
		Logger:   log.StandardLogger(),
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}
