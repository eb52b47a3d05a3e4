// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NLP_PROVIDER", "")
	t.Setenv("TTS_PROVIDER", "")
	t.Setenv("DATA_DIR", filepath.Join(t.TempDir(), "data"))
	t.Setenv("LOG_DIR", filepath.Join(t.TempDir(), "logs"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("default port should be 8080, got %q", cfg.Port)
	}
	if cfg.NLPProvider != "openai" || cfg.TTSProvider != "hume" {
		t.Errorf("unexpected default providers: %q, %q", cfg.NLPProvider, cfg.TTSProvider)
	}
}

func TestLoadCreatesDirectories(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_DIR", filepath.Join(t.TempDir(), "logs"))

	if _, err := Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestInitConfigPersistsAndUpdates(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_DIR", filepath.Join(t.TempDir(), "logs"))
	t.Setenv("NLP_PROVIDER", "canned")
	t.Setenv("TTS_PROVIDER", "canned")

	if err := InitConfig(dataDir); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "config.json")); err != nil {
		t.Fatalf("config.json not written: %v", err)
	}

	cfg := GetCurrentConfig()
	if cfg.NLPProvider != "canned" {
		t.Errorf("env provider not honored: %q", cfg.NLPProvider)
	}

	if err := UpdateTTSConfig("hume", map[string]string{"api_key": "k"}); err != nil {
		t.Fatalf("UpdateTTSConfig failed: %v", err)
	}

	updated := GetCurrentConfig()
	if updated.TTSProvider != "hume" || updated.TTSConfig["api_key"] != "k" {
		t.Errorf("update not visible: %+v", updated)
	}

	// Re-init must merge the saved provider settings back in.
	if err := InitConfig(dataDir); err != nil {
		t.Fatalf("second InitConfig failed: %v", err)
	}
	merged := GetCurrentConfig()
	if merged.TTSProvider != "hume" {
		t.Errorf("saved provider lost on re-init: %q", merged.TTSProvider)
	}
}
