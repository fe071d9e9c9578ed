// Package config provides configuration loading and validation for the
// contactlens service. Values come from the environment (optionally via a
// .env file loaded at process start).
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvAPIKey     = "GOOGLE_API_KEY"
	EnvModelPro   = "GOOGLE_MODEL_PRO"
	EnvModelFlash = "GOOGLE_MODEL_FLASH"
	EnvPort       = "PORT"
)

// Default model identifiers.
const (
	DefaultModelPro   = "gemini-2.5-pro"
	DefaultModelFlash = "gemini-2.5-flash"
	DefaultPort       = 8080
)

// Config holds the process configuration. APIKey is the one required
// credential; the two model identifiers select the higher- and
// lighter-capability variants.
type Config struct {
	APIKey     string
	ModelPro   string
	ModelFlash string
	Port       int
}

// FromEnv builds a Config from environment variables, applying defaults for
// the model identifiers and port.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:     os.Getenv(EnvAPIKey),
		ModelPro:   os.Getenv(EnvModelPro),
		ModelFlash: os.Getenv(EnvModelFlash),
		Port:       DefaultPort,
	}

	if cfg.ModelPro == "" {
		cfg.ModelPro = DefaultModelPro
	}
	if cfg.ModelFlash == "" {
		cfg.ModelFlash = DefaultModelFlash
	}

	if portStr := os.Getenv(EnvPort); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid %s value %q: %w", EnvPort, portStr, err)
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values. A missing API key
// is a startup-fatal condition.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: %s is required", EnvAPIKey)
	}
	if c.ModelPro == "" {
		return fmt.Errorf("config error: pro model identifier must not be empty")
	}
	if c.ModelFlash == "" {
		return fmt.Errorf("config error: flash model identifier must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	return nil
}
