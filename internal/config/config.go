// Package config loads server configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	VNC     VNCConfig     `yaml:"vnc"`
	Agent   AgentConfig   `yaml:"agent"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig configures persistence paths.
type StorageConfig struct {
	DBPath        string `yaml:"db_path"`
	TranscriptDir string `yaml:"transcript_dir"`
}

// VNCConfig locates the desktop's VNC server and the browser-facing proxy.
type VNCConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	ProxyPort int    `yaml:"proxy_port"`
}

// AgentConfig configures the agent runner.
type AgentConfig struct {
	APIKey    string `yaml:"api_key"`
	MaxTokens int    `yaml:"max_tokens"`

	// Scripted forces the deterministic local runner, API key or not.
	Scripted bool `yaml:"scripted"`
}

// Load reads the configuration. A missing or empty path yields defaults;
// environment variables override both defaults and file values.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			DBPath:        "data/sessions.db",
			TranscriptDir: "data/transcripts",
		},
		VNC: VNCConfig{
			Host:      "localhost",
			Port:      5900,
			ProxyPort: 6080,
		},
		Agent: AgentConfig{
			MaxTokens: 4096,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envString("HOST", c.Server.Host)
	c.Server.Port = envInt("PORT", c.Server.Port)
	c.Storage.DBPath = envString("DB_PATH", c.Storage.DBPath)
	c.Storage.TranscriptDir = envString("TRANSCRIPT_DIR", c.Storage.TranscriptDir)
	c.VNC.Host = envString("VNC_HOST", c.VNC.Host)
	c.VNC.Port = envInt("VNC_PORT", c.VNC.Port)
	c.VNC.ProxyPort = envInt("NOVNC_PORT", c.VNC.ProxyPort)
	c.Agent.APIKey = envString("ANTHROPIC_API_KEY", c.Agent.APIKey)
	c.Agent.MaxTokens = envInt("MAX_TOKENS", c.Agent.MaxTokens)
	if v := os.Getenv("SCRIPTED_AGENT"); v != "" {
		c.Agent.Scripted = v == "1" || v == "true"
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
