package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		OpdsURL:         "https://example.com/catalog.xml",
		PrimaryLanguage: "English",
		WorkerCount:     6,
		MaxRetries:      3,
		RetryDelayMs:    1000,
		FetchTimeoutSec: 10,
		PageTimeoutSec:  8,
		MaxPages:        20,
		BatchIntervalMs: 300,
		DBPath:          "./test.db",
		Port:            "8080",
		APIAccessKey:    "test-key",
		UserAgent:       "Test Agent",
		Timezone:        "UTC",
		Debug:           true,
		Version:         "test-version",
	}

	if cfg.OpdsURL != "https://example.com/catalog.xml" {
		t.Errorf("Expected OPDS URL 'https://example.com/catalog.xml', got '%s'", cfg.OpdsURL)
	}
	if cfg.PrimaryLanguage != "English" {
		t.Errorf("Expected primary language 'English', got '%s'", cfg.PrimaryLanguage)
	}
	if cfg.WorkerCount != 6 {
		t.Errorf("Expected worker count 6, got %d", cfg.WorkerCount)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.FetchTimeoutSec != 10 {
		t.Errorf("Expected fetch timeout 10, got %d", cfg.FetchTimeoutSec)
	}
	if cfg.PageTimeoutSec != 8 {
		t.Errorf("Expected page timeout 8, got %d", cfg.PageTimeoutSec)
	}
	if cfg.MaxPages != 20 {
		t.Errorf("Expected max pages 20, got %d", cfg.MaxPages)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
