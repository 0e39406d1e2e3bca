// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PostgresConfig holds row-store backend settings.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// SheetsConfig holds spreadsheet backend settings.
type SheetsConfig struct {
	SpreadsheetID       string `yaml:"spreadsheetID"`
	ServiceAccountEmail string `yaml:"serviceAccountEmail"`
	PrivateKey          string `yaml:"privateKey"`
}

// StripeConfig holds payment processor settings.
type StripeConfig struct {
	SecretKey     string `yaml:"secretKey"`
	WebhookSecret string `yaml:"webhookSecret"`
}

// Config represents the application configuration.
type Config struct {
	Backend    string         `yaml:"backend" validate:"required,oneof=postgres sheets memory"`
	ListenAddr string         `yaml:"listenAddr"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Sheets     SheetsConfig   `yaml:"sheets"`
	Stripe     StripeConfig   `yaml:"stripe"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from jala_config.yaml,
// looking in the current directory first, then the user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// ${VAR} references are expanded from the environment before parsing, so
// secrets can stay out of the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// BackendMissing reports setup instructions when the selected backend
// lacks required settings, or "" when it is fully configured. Checked at
// startup so every request short-circuits with the message instead of
// attempting I/O.
func (c *Config) BackendMissing() string {
	switch c.Backend {
	case "postgres":
		if c.Postgres.URL == "" {
			return "Missing required settings. Set postgres.url to a PostgreSQL connection string"
		}
	case "sheets":
		if c.Sheets.SpreadsheetID == "" || c.Sheets.ServiceAccountEmail == "" || c.Sheets.PrivateKey == "" {
			return "Missing required settings. Set sheets.spreadsheetID, sheets.serviceAccountEmail and sheets.privateKey"
		}
	}
	return ""
}

// findConfigFile searches for jala_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	configFileName := "jala_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
