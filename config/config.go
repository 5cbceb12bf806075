// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	WeChat   WeChatConfig   `yaml:"wechat"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WeChatConfig holds the official-account credentials and webhook settings.
type WeChatConfig struct {
	AppID        string `yaml:"app_id"`
	AppSecret    string `yaml:"app_secret"`
	Token        string `yaml:"token"`
	CallbackPath string `yaml:"callback_path"`
}

// OAuthConfig configures the web OAuth2 flow.
type OAuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RedirectURI string `yaml:"redirect_uri"`
	Scope       string `yaml:"scope"` // "snsapi_base" or "snsapi_userinfo"
}

// SessionConfig configures the session store.
// Use "memory" for in-process storage or "sqlite" for persistence.
type SessionConfig struct {
	Store string        `yaml:"store"` // "memory" or "sqlite"
	TTL   time.Duration `yaml:"ttl"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	WXGATE_WECHAT_TOKEN       - Webhook signature token (required)
//	WXGATE_WECHAT_APP_ID      - Official account app id
//	WXGATE_WECHAT_APP_SECRET  - Official account app secret
//	WXGATE_CALLBACK_PATH      - Webhook callback path (default: /wechat)
//	WXGATE_SERVER_HOST        - Server host (default: 0.0.0.0)
//	WXGATE_SERVER_PORT        - Server port (default: 8080)
//	WXGATE_SESSION_STORE      - Session store: memory or sqlite (default: memory)
//	WXGATE_DATABASE_DSN       - Database path (default: wxgate.db)
//	WXGATE_LOG_LEVEL          - Log level: debug, info, warn, error (default: info)
//	WXGATE_LOG_FORMAT         - Log format: json or console (default: json)
//	WXGATE_METRICS_ENABLED    - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
// This is the recommended method for Docker deployments.
func LoadWithFallback(path string) (*Config, error) {
	// Try loading from file first
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// Check if we have enough env vars to run
	if os.Getenv("WXGATE_WECHAT_TOKEN") != "" {
		return LoadFromEnv()
	}

	// No config available
	return nil, fmt.Errorf("no configuration found: provide config file or set WXGATE_WECHAT_TOKEN")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("WXGATE_WECHAT_TOKEN") != ""
}

// applyEnvOverrides applies WXGATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("WXGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WXGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WXGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("WXGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// WeChat configuration
	if v := os.Getenv("WXGATE_WECHAT_APP_ID"); v != "" {
		cfg.WeChat.AppID = v
	}
	if v := os.Getenv("WXGATE_WECHAT_APP_SECRET"); v != "" {
		cfg.WeChat.AppSecret = v
	}
	if v := os.Getenv("WXGATE_WECHAT_TOKEN"); v != "" {
		cfg.WeChat.Token = v
	}
	if v := os.Getenv("WXGATE_CALLBACK_PATH"); v != "" {
		cfg.WeChat.CallbackPath = v
	}

	// OAuth configuration
	if v := os.Getenv("WXGATE_OAUTH_ENABLED"); v != "" {
		cfg.OAuth.Enabled = parseBool(v)
	}
	if v := os.Getenv("WXGATE_OAUTH_REDIRECT_URI"); v != "" {
		cfg.OAuth.RedirectURI = v
	}
	if v := os.Getenv("WXGATE_OAUTH_SCOPE"); v != "" {
		cfg.OAuth.Scope = v
	}

	// Session configuration
	if v := os.Getenv("WXGATE_SESSION_STORE"); v != "" {
		cfg.Session.Store = v
	}
	if v := os.Getenv("WXGATE_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}

	// Database configuration
	if v := os.Getenv("WXGATE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("WXGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("WXGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WXGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("WXGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("WXGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.WeChat.CallbackPath == "" {
		cfg.WeChat.CallbackPath = "/wechat"
	}

	if cfg.OAuth.Scope == "" {
		cfg.OAuth.Scope = "snsapi_base"
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * time.Minute
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "wxgate.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.WeChat.Token == "" {
		return fmt.Errorf("wechat.token is required")
	}
	if !strings.HasPrefix(cfg.WeChat.CallbackPath, "/") {
		return fmt.Errorf("wechat.callback_path must start with '/', got %q", cfg.WeChat.CallbackPath)
	}

	validScopes := map[string]bool{"snsapi_base": true, "snsapi_userinfo": true}
	if !validScopes[cfg.OAuth.Scope] {
		return fmt.Errorf("oauth.scope must be 'snsapi_base' or 'snsapi_userinfo', got %q", cfg.OAuth.Scope)
	}
	if cfg.OAuth.Enabled {
		if cfg.WeChat.AppID == "" || cfg.WeChat.AppSecret == "" {
			return fmt.Errorf("wechat.app_id and wechat.app_secret are required when oauth.enabled is true")
		}
		if cfg.OAuth.RedirectURI == "" {
			return fmt.Errorf("oauth.redirect_uri is required when oauth.enabled is true")
		}
	}

	validStores := map[string]bool{"memory": true, "sqlite": true}
	if !validStores[cfg.Session.Store] {
		return fmt.Errorf("session.store must be 'memory' or 'sqlite', got %q", cfg.Session.Store)
	}

	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	return nil
}
