// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains fee catalog settings
	Catalog CatalogConfig `json:"catalog"`

	// Engine contains calculation engine settings
	Engine EngineConfig `json:"engine"`

	// Storage contains snapshot persistence settings
	Storage StorageConfig `json:"storage"`

	// Server contains HTTP service settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains fee catalog settings
type CatalogConfig struct {
	// Directory holds the catalog record files (.yaml or .hcl)
	Directory string `json:"directory"`

	// CacheSize is the number of resolved catalog versions kept in memory
	CacheSize int `json:"cache_size"`
}

// EngineConfig contains calculation engine settings
type EngineConfig struct {
	// DefaultCurrency applied when the profile does not specify one
	DefaultCurrency string `json:"default_currency"`

	// DayCountConvention selects how monthly figures project to other
	// timeframes: "thirty_day" or "actual_days"
	DayCountConvention string `json:"day_count_convention"`

	// AmortizationMonths spreads one-time costs across this many months.
	// Zero reports one-time costs separately with a break-even figure.
	AmortizationMonths int `json:"amortization_months"`
}

// StorageConfig contains snapshot persistence settings
type StorageConfig struct {
	// DatabasePath is the SQLite database holding snapshots.
	// ":memory:" is accepted for tests.
	DatabasePath string `json:"database_path"`
}

// ServerConfig contains HTTP service settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".clover-calculator")

	return &Config{
		Version: "1",
		Catalog: CatalogConfig{
			Directory: filepath.Join(base, "catalog"),
			CacheSize: 64,
		},
		Engine: EngineConfig{
			DefaultCurrency:    "CAD",
			DayCountConvention: "thirty_day",
			AmortizationMonths: 0,
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(base, "snapshots.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Set replaces the active configuration
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
}

// Get returns the active configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
