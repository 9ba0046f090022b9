// Package config loads application configuration from the environment.
// A .env file in the working directory is honored if present; GW2DEX_*
// variables override it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not).
	_ = godotenv.Load()
}

// Config holds all application configuration.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Fetch   FetchConfig
	Server  ServerConfig
}

// APIConfig holds remote API settings. Token is an opaque pre-obtained API
// key; it is only needed for account (inventory) features.
type APIConfig struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"https://api.guildwars2.com"`
	Token   string        `envconfig:"API_TOKEN" default:""`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"60s"`
}

// StorageConfig holds the data directory and the locales to ingest.
type StorageConfig struct {
	DataDir string   `envconfig:"DATA_DIR" default:""`
	Langs   []string `envconfig:"LANGS" default:"en"`
}

// FetchConfig holds the batch and retry policy for catalog ingestion.
type FetchConfig struct {
	FlushAt    int           `envconfig:"FETCH_FLUSH_AT" default:"190"`
	Retries    int           `envconfig:"FETCH_RETRIES" default:"2"`
	RetryDelay time.Duration `envconfig:"FETCH_RETRY_DELAY" default:"61s"`
}

// ServerConfig holds settings for the local search server.
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8632"`
}

// Load reads configuration from the environment. An empty data dir resolves
// to the platform user cache directory.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("gw2dex", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving user cache directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(cacheDir, "gw2dex")
	}

	if len(cfg.Storage.Langs) == 0 {
		return Config{}, fmt.Errorf("at least one locale is required")
	}
	for i, lang := range cfg.Storage.Langs {
		cfg.Storage.Langs[i] = strings.TrimSpace(lang)
	}

	if cfg.Fetch.FlushAt <= 0 {
		return Config{}, fmt.Errorf("GW2DEX_FETCH_FLUSH_AT must be positive")
	}
	if cfg.Fetch.Retries < 0 {
		return Config{}, fmt.Errorf("GW2DEX_FETCH_RETRIES must not be negative")
	}

	return cfg, nil
}

// LangDir returns the per-locale output directory.
func (s StorageConfig) LangDir(lang string) string {
	return filepath.Join(s.DataDir, lang)
}

// CachePath returns the raw item cache file for a locale.
func (s StorageConfig) CachePath(lang string) string {
	return filepath.Join(s.LangDir(lang), "items_"+lang+".json")
}

// CondensedPath returns the condensed catalog file for a locale.
func (s StorageConfig) CondensedPath(lang string) string {
	return filepath.Join(s.LangDir(lang), "condensed_"+lang+".json")
}

// QuickPath returns the quick-lookup catalog file for a locale.
func (s StorageConfig) QuickPath(lang string) string {
	return filepath.Join(s.LangDir(lang), "quick_"+lang+".json")
}
