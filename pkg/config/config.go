// Package config loads critterdex settings from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultDir holds the local database files when no paths are configured.
const DefaultDir = ".critterdex"

// Config is the process configuration. Every field maps to a
// CRITTERDEX_-prefixed environment variable.
type Config struct {
	DB        string `env:"DB"`
	KVBackend string `env:"KV_BACKEND" envDefault:"bolt"`
	KVPath    string `env:"KV_PATH"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// LedgerURL selects the remote currency ledger. Empty means the local
	// SQLite wallet.
	LedgerURL     string        `env:"LEDGER_URL"`
	LedgerRPS     float64       `env:"LEDGER_RPS" envDefault:"5"`
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`

	// Timezone is the reference zone for calendar days.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Tokyo"`

	// Catalog is an optional YAML file replacing the embedded catalog data.
	Catalog string `env:"CATALOG"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9464"`
}

// Load parses the environment and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CRITTERDEX_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DB == "" {
		cfg.DB = filepath.Join(DefaultDir, "critterdex.db")
	}
	if cfg.KVPath == "" {
		cfg.KVPath = filepath.Join(DefaultDir, "effects.db")
	}
	if cfg.LedgerRPS <= 0 {
		cfg.LedgerRPS = 5
	}
	return cfg, nil
}

// UsesDefaultDir reports whether any database lives under DefaultDir, in
// which case the caller must create the directory first.
func (c Config) UsesDefaultDir() bool {
	return filepath.Dir(c.DB) == DefaultDir || filepath.Dir(c.KVPath) == DefaultDir
}
