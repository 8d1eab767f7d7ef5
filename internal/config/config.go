// Package config handles BotFusion configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./botfusion.yaml, ~/.config/botfusion/config.yaml,
// /etc/botfusion/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"botfusion.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "botfusion", "config.yaml"))
	}

	paths = append(paths, "/etc/botfusion/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all BotFusion configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Models    ModelsConfig    `yaml:"models"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format"` // text or json
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// UpstreamConfig defines the completion provider the gateway forwards to.
type UpstreamConfig struct {
	// BaseURL is an OpenAI-compatible API root. Empty means the
	// provider default.
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// RateLimitConfig defines the per-client window for the chat endpoint.
// A zero MaxRequests disables limiting.
type RateLimitConfig struct {
	MaxRequests int `yaml:"max_requests"`
	WindowSec   int `yaml:"window_sec"`
}

// ModelsConfig defines the selectable model identifiers. They pass
// through to the upstream provider opaquely.
type ModelsConfig struct {
	Default   string   `yaml:"default"`
	Available []string `yaml:"available"`
}

// SessionDBPath returns the session database location under the data
// directory.
func (c *Config) SessionDBPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "sessions.db")
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			WindowSec:   60,
		},
		Models: ModelsConfig{
			Default:   "gpt-4o-mini",
			Available: []string{"gpt-4o-mini", "gpt-4o"},
		},
		LogFormat: "text",
	}
}
