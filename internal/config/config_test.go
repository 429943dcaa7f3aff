package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", cfg.API.Timeout)
	}
	if cfg.App.StartPath != "/" || cfg.Log.Level != "INFO" || cfg.Log.Format != "text" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "15s")
	t.Setenv("START_PATH", "/tasks")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.Timeout != 15*time.Second || cfg.App.StartPath != "/tasks" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, v := range []string{"ftp://example.com", "localhost:8000", "http://"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("API_BASE_URL", v)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %q should fail", v)
			}
		})
	}
}
