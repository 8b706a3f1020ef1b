// Package config loads the falldice configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/geniusisme/falldice/internal/database"
)

// EnvPrefix prefixes every environment variable that overrides the config file.
const EnvPrefix = "FALLDICE_"

// Config holds falldice configuration settings.
type Config struct {
	Dice     DiceConfig      `yaml:"dice" envPrefix:"DICE_"`
	Database database.Config `yaml:"database" envPrefix:"DATABASE_"`
	Server   ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Report   ReportConfig    `yaml:"report" envPrefix:"REPORT_"`
}

// DiceConfig selects the face catalogue.
type DiceConfig struct {
	// CataloguePath is an optional YAML catalogue merged over the built-in dice.
	CataloguePath string `yaml:"catalogue_path" env:"CATALOGUE_PATH"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	// Language is the BCP 47 tag used to format numbers in text reports.
	Language string `yaml:"language" env:"LANGUAGE"`

	// Save stores every evaluated report in the database.
	Save bool `yaml:"save" env:"SAVE"`
}

// ServerConfig holds evaluation service settings.
type ServerConfig struct {
	Addr        string            `yaml:"addr" env:"ADDR"`
	WebSocket   WebSocketConfig   `yaml:"websocket" envPrefix:"WEBSOCKET_"`
	Connections ConnectionsConfig `yaml:"connections" envPrefix:"CONNECTIONS_"`

	// MaxCombinations caps the dice combinations of one cast sent by a client.
	// Larger casts are refused before evaluation. 0 means unlimited.
	MaxCombinations int `yaml:"max_combinations" env:"MAX_COMBINATIONS"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip" env:"MAX_PER_IP"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total" env:"MAX_TOTAL"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size" env:"MAX_MESSAGE_SIZE"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: database.DefaultConfig("data/falldice.db"),
		Server: ServerConfig{
			Addr: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 64 * 1024,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 50,
			},
			MaxCombinations: 5_000_000,
		},
		Report: ReportConfig{
			Language: "en",
		},
	}
}

// LoadConfig loads configuration from a YAML file, then applies FALLDICE_*
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return config, err
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return config, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.MaxCombinations < 0 {
		return fmt.Errorf("server.max_combinations must not be negative")
	}
	if c.Server.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("server.websocket.max_message_size must be positive")
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// "http://localhost:3000/" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
