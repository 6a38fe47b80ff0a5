// Package config provides configuration for chirp applications: yaml files
// with environment overrides, defaults, and a dev-mode file watcher.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	SSE    SSEConfig    `yaml:"sse"`
	Debug  bool         `yaml:"debug"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// WriteTimeout is zero by default: a server-level write deadline would
	// also sever long-lived push streams.
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// SSEConfig holds server-push defaults.
type SSEConfig struct {
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
		SSE: SSEConfig{
			Heartbeat: 15 * time.Second,
		},
	}
}

// Load reads a yaml file over the defaults and then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides select fields from CHIRP_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHIRP_SERVER_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("CHIRP_LOGGER_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("CHIRP_DEBUG"); v != "" {
		c.Debug = v == "1" || v == "true"
	}
	if v := os.Getenv("CHIRP_SSE_HEARTBEAT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SSE.Heartbeat = d
		}
	}
}

// BuildLogger constructs a zap logger from the logger section.
func (c *LoggerConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: logger level %q: %w", c.Level, err)
	}
	zc := zap.NewProductionConfig()
	if c.Encoding == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
