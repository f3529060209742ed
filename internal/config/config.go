package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Run      RunConfig
	Database DatabaseConfig
}

// DataConfig holds dataset source settings
type DataConfig struct {
	Path        string // Excel or CSV file with one label column
	LabelColumn string
}

// RunConfig holds estimator defaults; CLI flags override these
type RunConfig struct {
	K           int
	Repetitions int
	BaseSeed    int64
	Confidence  float64 // two-sided level in (0,1)
	MaxWorkers  int
	Stratify    bool
}

// DatabaseConfig holds the optional report ledger connection
type DatabaseConfig struct {
	URL string // empty disables persistence
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			Path:        os.Getenv("GOFOLD_DATA_PATH"),
			LabelColumn: getEnv("GOFOLD_LABEL_COLUMN", "label"),
		},
		Run: RunConfig{
			K:           getEnvInt("GOFOLD_K", 5),
			Repetitions: getEnvInt("GOFOLD_REPETITIONS", 10),
			BaseSeed:    int64(getEnvInt("GOFOLD_BASE_SEED", 42)),
			Confidence:  getEnvFloat("GOFOLD_CONFIDENCE", 0.95),
			MaxWorkers:  getEnvInt("GOFOLD_MAX_WORKERS", 4),
			Stratify:    getEnvBool("GOFOLD_STRATIFY", true),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Run.K < 2 {
		return fmt.Errorf("GOFOLD_K must be at least 2, got %d", c.Run.K)
	}
	if c.Run.Repetitions < 1 {
		return fmt.Errorf("GOFOLD_REPETITIONS must be at least 1, got %d", c.Run.Repetitions)
	}
	if c.Run.Confidence <= 0 || c.Run.Confidence >= 1 {
		return fmt.Errorf("GOFOLD_CONFIDENCE must be in (0,1), got %g", c.Run.Confidence)
	}
	if c.Run.MaxWorkers < 1 {
		return fmt.Errorf("GOFOLD_MAX_WORKERS must be at least 1, got %d", c.Run.MaxWorkers)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
