package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.URL != "http://127.0.0.1:8080" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if !cfg.UI.Animate {
		t.Error("UI.Animate should default to true")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
api:
  url: "http://yoga.local:9000"
  timeout: 3s
log:
  level: debug
ui:
  animate: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.URL != "http://yoga.local:9000" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.UI.Animate {
		t.Error("UI.Animate = true, want false")
	}
	// Unspecified fields keep their defaults.
	if cfg.Log.File != "yoga-tui.log" {
		t.Errorf("Log.File = %q, want default", cfg.Log.File)
	}
	if cfg.UI.MarkdownStyle != "dark" {
		t.Errorf("UI.MarkdownStyle = %q, want default", cfg.UI.MarkdownStyle)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api:
  url: "http://from-file:1"
log:
  level: warn
`)
	t.Setenv("YOGA_API_URL", "http://from-env:2")
	t.Setenv("YOGA_API_TIMEOUT", "750ms")
	t.Setenv("YOGA_UI_MARKDOWN_STYLE", "light")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.URL != "http://from-env:2" {
		t.Errorf("API.URL = %q, want env value", cfg.API.URL)
	}
	if cfg.API.Timeout != 750*time.Millisecond {
		t.Errorf("API.Timeout = %v, want 750ms", cfg.API.Timeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want file value", cfg.Log.Level)
	}
	if cfg.UI.MarkdownStyle != "light" {
		t.Errorf("UI.MarkdownStyle = %q, want light", cfg.UI.MarkdownStyle)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty url", func(c *Config) { c.API.URL = "" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
