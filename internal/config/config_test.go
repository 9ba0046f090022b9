package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.BaseURL != "https://api.guildwars2.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Fetch.FlushAt != 190 {
		t.Errorf("FlushAt = %d, want 190", cfg.Fetch.FlushAt)
	}
	if cfg.Fetch.Retries != 2 {
		t.Errorf("Retries = %d, want 2", cfg.Fetch.Retries)
	}
	if cfg.Fetch.RetryDelay != 61*time.Second {
		t.Errorf("RetryDelay = %v, want 61s", cfg.Fetch.RetryDelay)
	}
	if len(cfg.Storage.Langs) != 1 || cfg.Storage.Langs[0] != "en" {
		t.Errorf("Langs = %v, want [en]", cfg.Storage.Langs)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("DataDir not resolved")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GW2DEX_API_TOKEN", "secret")
	t.Setenv("GW2DEX_LANGS", "en,de,fr")
	t.Setenv("GW2DEX_FETCH_RETRY_DELAY", "1s")
	t.Setenv("GW2DEX_DATA_DIR", "/tmp/gw2dex-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.Token != "secret" {
		t.Errorf("Token = %q", cfg.API.Token)
	}
	if len(cfg.Storage.Langs) != 3 {
		t.Errorf("Langs = %v, want 3 locales", cfg.Storage.Langs)
	}
	if cfg.Fetch.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v, want 1s", cfg.Fetch.RetryDelay)
	}
	if cfg.Storage.DataDir != "/tmp/gw2dex-test" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
}

func TestLoad_RejectsBadFetchConfig(t *testing.T) {
	t.Setenv("GW2DEX_FETCH_FLUSH_AT", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero flush threshold")
	}
}

func TestStoragePaths(t *testing.T) {
	s := StorageConfig{DataDir: "/data"}

	if got := s.CachePath("en"); got != filepath.Join("/data", "en", "items_en.json") {
		t.Errorf("CachePath = %q", got)
	}
	if got := s.CondensedPath("de"); got != filepath.Join("/data", "de", "condensed_de.json") {
		t.Errorf("CondensedPath = %q", got)
	}
	if got := s.QuickPath("fr"); got != filepath.Join("/data", "fr", "quick_fr.json") {
		t.Errorf("QuickPath = %q", got)
	}
}
