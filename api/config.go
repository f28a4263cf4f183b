package api

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/a11yaudit/a11ycheck/langid"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Inference InferenceConfig `yaml:"inference"`
	Language  LanguageConfig  `yaml:"language"`
	Store     StoreConfig     `yaml:"store"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// MaxSessions bounds the number of browser tabs audited concurrently.
	MaxSessions int `yaml:"max_sessions"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// BrowserConfig controls the renderer.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome; empty launches a
	// local one.
	Remote          string        `yaml:"remote"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
}

// InferenceConfig points at the ML backends.
type InferenceConfig struct {
	// EASTURL is the base URL of the text-detection backend. Required.
	EASTURL string `yaml:"east_url"`

	// SimilarityURL is the base URL of the image/text similarity backend.
	// Empty disables the alt-text detector.
	SimilarityURL string `yaml:"similarity_url"`

	Timeout time.Duration `yaml:"timeout"`
}

// LanguageConfig controls the language identifier.
type LanguageConfig struct {
	// Languages is the closed candidate set of ISO 639-1 codes.
	Languages []string `yaml:"languages"`
}

// StoreConfig controls check-history persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("api: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("api: parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxSessions <= 0 {
		c.Server.MaxSessions = 4
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Inference.Timeout <= 0 {
		c.Inference.Timeout = time.Minute
	}
	if len(c.Language.Languages) == 0 {
		c.Language.Languages = langid.DefaultLanguages
	}
	if c.Store.Path == "" {
		c.Store.Path = "a11ycheck.db"
	}
}
