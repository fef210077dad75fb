package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr   string `env:"PAYFLOW_HTTP_ADDR" envDefault:":8080"`
	Storage    string `env:"PAYFLOW_STORAGE" envDefault:"memory"`
	SQLitePath string `env:"PAYFLOW_SQLITE_PATH" envDefault:"payflow.db"`

	HistoryEnabled bool          `env:"PAYFLOW_EVENT_HISTORY" envDefault:"true"`
	MaxHistorySize int           `env:"PAYFLOW_EVENT_HISTORY_SIZE" envDefault:"100"`
	RetryAttempts  int           `env:"PAYFLOW_HANDLER_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"PAYFLOW_HANDLER_RETRY_DELAY" envDefault:"100ms"`

	DisableSettlement bool   `env:"PAYFLOW_DISABLE_SETTLEMENT" envDefault:"false"`
	AmountCeiling     string `env:"PAYFLOW_AMOUNT_CEILING" envDefault:"1000000"`
	SimulateConsumers bool   `env:"PAYFLOW_SIMULATE_CONSUMERS" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxHistorySize < 1 {
		return Config{}, fmt.Errorf("event history size must be at least 1, got %d", cfg.MaxHistorySize)
	}
	if cfg.RetryAttempts < 1 {
		return Config{}, fmt.Errorf("handler retry attempts must be at least 1, got %d", cfg.RetryAttempts)
	}
	return cfg, nil
}
