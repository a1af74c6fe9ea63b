package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	// Path is the SQLite database file, created on first run
	Path string `mapstructure:"path"`
}

// RegistryConfig holds the company-registry lookup configuration
type RegistryConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum lookups per second; zero disables throttling
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// LedgerConfig holds ledger engine configuration
type LedgerConfig struct {
	// DividendPercentage is the share of revenue distributed to holders
	DividendPercentage float64 `mapstructure:"dividend_percentage"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // in seconds
}

// ConsoleConfig holds configuration for the console front end
type ConsoleConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Registry   RegistryConfig `mapstructure:"registry"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
}

// BotConfig holds configuration for the Telegram bot front end
type BotConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Registry   RegistryConfig `mapstructure:"registry"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

// LoadConsoleConfig loads configuration for the console front end
func LoadConsoleConfig(configFile string, envPath string) (*ConsoleConfig, error) {
	v := configureViper("console", configFile, envPath)
	setCommonDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config ConsoleConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadBotConfig loads configuration for the Telegram bot front end
func LoadBotConfig(configFile string, envPath string) (*BotConfig, error) {
	v := configureViper("bot", configFile, envPath)
	setCommonDefaults(v)
	v.SetDefault("telegram.poll_timeout", 50)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config BotConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "tokenizelocal.sqlite")
	v.SetDefault("registry.api_url", "https://api.checko.ru/v2/finances")
	v.SetDefault("registry.timeout", "30s")
	v.SetDefault("registry.rate_limit", 1.0)
	v.SetDefault("registry.burst", 1)
	v.SetDefault("ledger.dividend_percentage", 0.10)
}

// readConfig tolerates a missing config file; environment variables still apply
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("TOKENIZELOCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no
// config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.path",
		// Registry
		"registry.api_url",
		"registry.api_key",
		"registry.timeout",
		"registry.rate_limit",
		"registry.burst",
		// Ledger
		"ledger.dividend_percentage",
		// Telegram
		"telegram.token",
		"telegram.poll_timeout",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads .env files: shared base first, then local overrides, then an
// optional per-service local file.
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
