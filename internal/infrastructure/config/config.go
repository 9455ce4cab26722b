// Package config loads and saves the companion's configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planwright/planwright/internal/infrastructure/storage"
	"gopkg.in/yaml.v3"
)

// Config holds the companion's transport and review settings.
type Config struct {
	// SocketPath is the pipe transport endpoint.
	SocketPath string `yaml:"socket_path"`
	// HTTPAddr is the loopback address of the HTTP fallback surface.
	HTTPAddr string `yaml:"http_addr"`
	// ConnectTimeout bounds pipe connect attempts.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ExchangeTimeout bounds one full send/receive exchange.
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
	// ConfidenceThreshold marks items below it for extra reviewer
	// attention. It never enables auto-approval; every artifact is
	// reviewed by a human regardless.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// AIProvider selects the backend ("stub", "ollama", "openai").
	AIProvider string `yaml:"ai_provider"`
	// AIModel overrides the provider's default model.
	AIModel string `yaml:"ai_model"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SocketPath:          filepath.Join(os.TempDir(), "planwright.sock"),
		HTTPAddr:            "127.0.0.1:8177",
		ConnectTimeout:      5 * time.Second,
		ExchangeTimeout:     30 * time.Second,
		ConfidenceThreshold: 0.7,
		AIProvider:          "stub",
	}
}

// Load reads the config file from the workspace, falling back to
// defaults for a missing file or any unset field.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaults := Default()
	if cfg.SocketPath == "" {
		cfg.SocketPath = defaults.SocketPath
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaults.HTTPAddr
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = defaults.ExchangeTimeout
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if cfg.AIProvider == "" {
		cfg.AIProvider = defaults.AIProvider
	}

	return cfg, nil
}

// Save writes the config file to the workspace.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return err
	}
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
