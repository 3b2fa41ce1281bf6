// Package config loads the audiobot CLI configuration.
//
// Configuration lives under os.UserConfigDir()/audiobot/config.yaml:
//
//	~/Library/Application Support/audiobot/config.yaml   (macOS)
//	~/.config/audiobot/config.yaml                       (Linux)
//	%AppData%/audiobot/config.yaml                       (Windows)
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
)

// appDir is the directory name under os.UserConfigDir().
const appDir = "audiobot"

// Config holds the CLI configuration.
type Config struct {
	// API is the application backend hosting the session and search
	// endpoints.
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`

	// Realtime is the agent's realtime endpoint.
	Realtime struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"realtime"`

	// Session is the default session configuration.
	Session struct {
		Instructions string `yaml:"instructions"`
		Voice        string `yaml:"voice"`
	} `yaml:"session"`

	// Log configures logging.
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, "config.yaml"), nil
}

// Load reads the configuration from path. A missing file yields the
// defaults; path == "" uses DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Realtime.BaseURL == "" {
		c.Realtime.BaseURL = realtime.DefaultRealtimeURL
	}
	if c.Realtime.Model == "" {
		c.Realtime.Model = realtime.DefaultModel
	}
	if c.Session.Voice == "" {
		c.Session.Voice = realtime.VoiceAlloy
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
