package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with no file", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
			t.Errorf("Unexpected server defaults: %+v", cfg.Server)
		}
		if cfg.Storage.DBPath != "data/sessions.db" {
			t.Errorf("Unexpected db path: %s", cfg.Storage.DBPath)
		}
		if cfg.VNC.Host != "localhost" || cfg.VNC.Port != 5900 || cfg.VNC.ProxyPort != 6080 {
			t.Errorf("Unexpected VNC defaults: %+v", cfg.VNC)
		}
		if cfg.Agent.MaxTokens != 4096 {
			t.Errorf("Unexpected max tokens: %d", cfg.Agent.MaxTokens)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
server:
  port: 9090
vnc:
  host: desktop
  proxy_port: 7080
agent:
  max_tokens: 2048
  scripted: true
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Server.Port != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
		}
		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("Unset file values should keep defaults, got host %s", cfg.Server.Host)
		}
		if cfg.VNC.Host != "desktop" || cfg.VNC.ProxyPort != 7080 {
			t.Errorf("Unexpected VNC config: %+v", cfg.VNC)
		}
		if cfg.Agent.MaxTokens != 2048 || !cfg.Agent.Scripted {
			t.Errorf("Unexpected agent config: %+v", cfg.Agent)
		}
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		t.Setenv("VNC_HOST", "10.0.0.5")
		t.Setenv("ANTHROPIC_API_KEY", "sk-test")
		t.Setenv("SCRIPTED_AGENT", "true")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Server.Port != 3000 {
			t.Errorf("Expected port 3000, got %d", cfg.Server.Port)
		}
		if cfg.VNC.Host != "10.0.0.5" {
			t.Errorf("Expected VNC host from env, got %s", cfg.VNC.Host)
		}
		if cfg.Agent.APIKey != "sk-test" {
			t.Errorf("Expected API key from env, got %s", cfg.Agent.APIKey)
		}
		if !cfg.Agent.Scripted {
			t.Error("Expected scripted agent from env")
		}
	})

	t.Run("invalid numeric env falls back", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("Expected default port on bad env, got %d", cfg.Server.Port)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := Load("/no/such/config.yaml"); err == nil {
			t.Error("Expected an error for a missing file")
		}
	})
}
