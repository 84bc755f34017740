// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by NewConfig.
const (
	EnvLogLevel   = "SHAPES_MCP_LOG_LEVEL"
	EnvWorkers    = "SHAPES_MCP_WORKERS"
	EnvRenderSize = "SHAPES_MCP_RENDER_SIZE"
	EnvClassifier = "SHAPES_MCP_CLASSIFIER"
)

// Classifier rule chains selectable with SHAPES_MCP_CLASSIFIER.
const (
	ClassifierDefault     = "default"
	ClassifierIndependent = "independent"
)

const defaultRenderSize = 512

// Config holds the server settings read from the environment.
type Config struct {
	LogLevel   string
	Workers    int // 0 means one worker per CPU
	RenderSize int
	Classifier string
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Load reads the given .env files into the environment, then builds a Config
// from it. With no arguments it reads ".env" in the working directory. A
// missing file is not an error; variables already set in the environment
// win over file values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig builds a Config from the current environment.
func NewConfig() *Config {
	return &Config{
		LogLevel:   strings.ToLower(getEnv(EnvLogLevel, "info")),
		Workers:    getEnvInt(EnvWorkers, 0),
		RenderSize: getEnvInt(EnvRenderSize, defaultRenderSize),
		Classifier: strings.ToLower(getEnv(EnvClassifier, ClassifierDefault)),
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%s must not be negative, got %d", EnvWorkers, c.Workers)
	}
	if c.RenderSize < 16 {
		return fmt.Errorf("%s must be at least 16, got %d", EnvRenderSize, c.RenderSize)
	}
	switch c.Classifier {
	case ClassifierDefault, ClassifierIndependent:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvClassifier, ClassifierDefault, ClassifierIndependent, c.Classifier)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
