package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultPort        = 8337
	defaultResolverURL = "http://localhost:5080"
)

type Config struct {
	// Server settings for the remote control endpoint.
	Server ServerConfig `koanf:"server"`

	// Resolver is the content resolution service.
	Resolver ResolverConfig `koanf:"resolver"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// DatabasePath overrides the default database location.
	DatabasePath string `koanf:"database_path"`

	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error"
}

// ServerConfig holds the websocket server settings.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// ResolverConfig holds the content resolver connection settings.
type ResolverConfig struct {
	URL            string `koanf:"url"` // e.g., "http://localhost:5080"
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Normalize resolver URL (remove trailing slash)
	cfg.Resolver.URL = strings.TrimSuffix(cfg.Resolver.URL, "/")
	if cfg.Resolver.URL == "" {
		cfg.Resolver.URL = defaultResolverURL
	}

	// Expand ~ in database_path
	if cfg.DatabasePath != "" {
		cfg.DatabasePath = expandPath(cfg.DatabasePath)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/remotune/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "remotune", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != "" && c.Lastfm.SessionKey != ""
}
