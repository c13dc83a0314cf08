// Package config loads server settings from an optional YAML file, a .env
// file, and environment variables (environment wins).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr          = ":8080"
	DefaultAllowedOrigin = "http://localhost:5173"
	DefaultMapboxTimeout = 10 // seconds

	EnvAddr              = "SIMFLOW_ADDR"
	EnvAllowedOrigins    = "SIMFLOW_ALLOWED_ORIGINS"
	EnvMapboxAccessToken = "MAPBOX_ACCESS_TOKEN"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Mapbox MapboxConfig `yaml:"mapbox"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type MapboxConfig struct {
	AccessToken string `yaml:"accessToken"`
	Timeout     int    `yaml:"timeout"` // seconds
}

// TimeoutDuration returns the per-request geocoding timeout.
func (m MapboxConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{DefaultAllowedOrigin},
		},
		Mapbox: MapboxConfig{
			Timeout: DefaultMapboxTimeout,
		},
	}
}

// Load reads configuration in ascending precedence: defaults, YAML file (if
// path is non-empty), environment. A .env file in the working directory is
// folded into the environment first; its absence is not an error. A missing
// Mapbox token is allowed here — the geocoder fails per call instead.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv(EnvAllowedOrigins); origins != "" {
		c.Server.AllowedOrigins = splitOrigins(origins)
	}
	if token := os.Getenv(EnvMapboxAccessToken); token != "" {
		c.Mapbox.AccessToken = token
	}
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
