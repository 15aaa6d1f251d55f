package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"election-market-lab/internal/domain"
)

// Config holds all pipeline configuration.
type Config struct {
	Events []domain.EventConfig `yaml:"events"`
	Data   struct {
		Dir         string `yaml:"dir"`          // per-slug input directories live here
		DonationCSV string `yaml:"donation_csv"` // the national donation file
	} `yaml:"data"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Storage struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickHouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`
	Polymarket struct {
		GammaBase      string `yaml:"gamma_base"`
		ClobBase       string `yaml:"clob_base"`
		RateLimitMs    int    `yaml:"rate_limit_ms"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"polymarket"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Workers int `yaml:"workers"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv("DONATION_CSV"); v != "" {
		cfg.Data.DonationCSV = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	// Defaults
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Polymarket.RateLimitMs == 0 {
		cfg.Polymarket.RateLimitMs = 500
	}
	if cfg.Polymarket.TimeoutSeconds == 0 {
		cfg.Polymarket.TimeoutSeconds = 30
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Events) == 0 {
		return fmt.Errorf("at least one event is required")
	}
	seen := make(map[string]struct{}, len(c.Events))
	for i, e := range c.Events {
		if e.Slug == "" {
			return fmt.Errorf("events[%d].slug is required", i)
		}
		if _, dup := seen[e.Slug]; dup {
			return fmt.Errorf("duplicate event slug %q", e.Slug)
		}
		seen[e.Slug] = struct{}{}
	}
	if c.Data.DonationCSV == "" {
		return fmt.Errorf("data.donation_csv is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
