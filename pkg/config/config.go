/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
)

// Config represents the dctsteg configuration
type Config struct {
	Server  Server  `yaml:"server"`
	Stego   Stego   `yaml:"stego"`
	Fetch   Fetch   `yaml:"fetch"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Server contains HTTP server configuration
type Server struct {
	Port                   int      `yaml:"port"`
	Bind                   string   `yaml:"bind"`
	APIKey                 string   `yaml:"api_key"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	MaxUploadBytes         int64    `yaml:"max_upload_bytes"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
}

// Stego contains the codec parameters. Encoder and decoder must agree on
// strength, positions and channel.
type Stego struct {
	Strength     float64  `yaml:"strength"`
	Positions    [][2]int `yaml:"positions"`
	Channel      string   `yaml:"channel"`
	OutputFormat string   `yaml:"output_format"`
	Verify       bool     `yaml:"verify"`
}

// Fetch contains remote image fetch configuration
type Fetch struct {
	Enabled        bool  `yaml:"enabled"`
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	MaxBytes       int64 `yaml:"max_bytes"`
}

// Storage contains encoded image store configuration
type Storage struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := stego.DefaultParams()
	positions := make([][2]int, len(params.Positions))
	for i, p := range params.Positions {
		positions[i] = [2]int{p.Row, p.Col}
	}

	return &Config{
		Server: Server{
			Port:                   8080,
			Bind:                   "127.0.0.1",
			AllowedOrigins:         []string{"*"},
			MaxUploadBytes:         10 << 20,
			ShutdownTimeoutSeconds: 10,
		},
		Stego: Stego{
			Strength:     params.Strength,
			Positions:    positions,
			Channel:      imageio.Red.String(),
			OutputFormat: string(imageio.PNG),
			Verify:       true,
		},
		Fetch: Fetch{
			Enabled:        true,
			TimeoutSeconds: 10,
			MaxBytes:       10 << 20,
		},
		Storage: Storage{
			Enabled: false,
			DataDir: "./data",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600), the file may hold the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration to configPath, optionally
// with a freshly generated API key.
func BootstrapConfig(configPath string, generateAPIKey bool) (*Config, error) {
	config := DefaultConfig()

	if generateAPIKey {
		key, err := GenerateSecureKey(32) // 256 bits
		if err != nil {
			return nil, fmt.Errorf("failed to generate API key: %w", err)
		}
		config.Server.APIKey = key
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./dctsteg.yaml"
	}

	// For Linux/macOS, use ~/.config/dctsteg/config.yaml
	return filepath.Join(homeDir, ".config", "dctsteg", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// ApplyEnv overrides configuration from the environment:
// ALLOWED_ORIGINS (comma separated), DCTSTEG_API_KEY and DCTSTEG_PORT.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}

	if v, ok := os.LookupEnv("DCTSTEG_API_KEY"); ok {
		c.Server.APIKey = v
	}

	if v, ok := os.LookupEnv("DCTSTEG_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DCTSTEG_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Bind != "" && net.ParseIP(c.Server.Bind) == nil && c.Server.Bind != "localhost" {
		return fmt.Errorf("server bind address %q is not an IP address", c.Server.Bind)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server max_upload_bytes must be positive")
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("server shutdown_timeout_seconds must not be negative")
	}

	if err := c.StegoParams().Validate(); err != nil {
		return fmt.Errorf("invalid stego configuration: %w", err)
	}
	if _, err := c.Channel(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}

	if c.Fetch.Enabled && (c.Fetch.TimeoutSeconds <= 0 || c.Fetch.MaxBytes <= 0) {
		return fmt.Errorf("fetch timeout_seconds and max_bytes must be positive when fetch is enabled")
	}
	if c.Storage.Enabled && c.Storage.DataDir == "" {
		return fmt.Errorf("storage data_dir is required when storage is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}

	return nil
}

// StegoParams converts the stego section into codec parameters.
func (c *Config) StegoParams() stego.Params {
	positions := make([]stego.Position, len(c.Stego.Positions))
	for i, p := range c.Stego.Positions {
		positions[i] = stego.Position{Row: p[0], Col: p[1]}
	}
	return stego.Params{Positions: positions, Strength: c.Stego.Strength}
}

// Channel returns the configured carrier channel.
func (c *Config) Channel() (imageio.Channel, error) {
	return imageio.ParseChannel(c.Stego.Channel)
}

// OutputFormat returns the configured output container.
func (c *Config) OutputFormat() (imageio.Format, error) {
	return imageio.ParseFormat(c.Stego.OutputFormat)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Bind, strconv.Itoa(c.Server.Port))
}

// FetchTimeout returns the remote fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Logging.Level, "debug")
}
