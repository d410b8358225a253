package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level silverbooks.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	PGC      PGCConfig      `yaml:"pgc"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the silver Postgres database. The DSN itself is
// never stored in the file; DSNEnv names the environment variable carrying it.
type DatabaseConfig struct {
	DSNEnv string `yaml:"dsn_env"`
}

// PipelineConfig tunes the load pipeline.
type PipelineConfig struct {
	BalanceTolerance float64 `yaml:"balance_tolerance"` // max |debits - credits| per entry
	TagSlots         int     `yaml:"tag_slots"`
	Workers          int     `yaml:"workers"` // concurrent accounts during balance accumulation
}

// PGCConfig locates the chart-of-accounts classification table.
// An empty path selects the compiled-in table.
type PGCConfig struct {
	TablePath string `yaml:"table_path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DSN resolves the database connection string from the environment.
func (c *Config) DSN() (string, error) {
	dsn := os.Getenv(c.Database.DSNEnv)
	if dsn == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.Database.DSNEnv)
	}
	return dsn, nil
}

// Load reads a silverbooks.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSNEnv: "SILVERBOOKS_DATABASE_URL",
		},
		Pipeline: PipelineConfig{
			BalanceTolerance: 0.01,
			TagSlots:         4,
			Workers:          8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
