// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. PODLEDGER_LOG_LEVEL.
const EnvPrefix = "PODLEDGER"

// APIKeyEnv is the unprefixed variable holding the exchange rate API key.
const APIKeyEnv = "EXCHANGERATE_HOST_KEY"

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig locates the SQLite ledger and its seed file.
type DatabaseConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	SeedFile string `mapstructure:"seed_file" yaml:"seed_file"`
}

// FXConfig configures the exchange rate client and service.
type FXConfig struct {
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	ReportingCurrency string `mapstructure:"reporting_currency" yaml:"reporting_currency"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts       int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	BackoffBaseMs     int    `mapstructure:"backoff_base_ms" yaml:"backoff_base_ms"`
	BackoffOffsetMs   int    `mapstructure:"backoff_offset_ms" yaml:"backoff_offset_ms"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// Timeout is the per-attempt request timeout.
func (c FXConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BackoffBase is the base of the exponential retry wait.
func (c FXConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMs) * time.Millisecond
}

// BackoffOffset is added to every retry wait.
func (c FXConfig) BackoffOffset() time.Duration {
	return time.Duration(c.BackoffOffsetMs) * time.Millisecond
}

// AccountsConfig names the accounts used by the account resolver.
type AccountsConfig struct {
	Fallback string   `mapstructure:"fallback" yaml:"fallback"`
	Tax      []string `mapstructure:"tax" yaml:"tax"`
}

// CSVConfig controls the preview export.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	FX       FXConfig       `mapstructure:"fx" yaml:"fx"`
	Accounts AccountsConfig `mapstructure:"accounts" yaml:"accounts"`
	CSV      CSVConfig      `mapstructure:"csv" yaml:"csv"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFrom("")
}

// InitializeConfigFrom loads configuration like InitializeConfig, reading
// file instead of searching the default locations when file is not empty.
func InitializeConfigFrom(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pod-ledger")
		v.AddConfigPath(".pod-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is always read from its own unprefixed variable
	if err := v.BindEnv("fx.api_key", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", APIKeyEnv, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.FX.ReportingCurrency = strings.ToUpper(config.FX.ReportingCurrency)

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Database defaults
	v.SetDefault("database.path", "pod-ledger.db")
	v.SetDefault("database.seed_file", "")

	// Exchange rate defaults
	v.SetDefault("fx.base_url", "https://api.exchangerate.host")
	v.SetDefault("fx.reporting_currency", "CAD")
	v.SetDefault("fx.timeout_seconds", 10)
	v.SetDefault("fx.max_attempts", 3)
	v.SetDefault("fx.backoff_base_ms", 1000)
	v.SetDefault("fx.backoff_offset_ms", 1000)
	v.SetDefault("fx.requests_per_minute", 60)
	v.SetDefault("fx.api_key", "")

	// Account resolver defaults
	v.SetDefault("accounts.fallback", "Other Expenses")
	v.SetDefault("accounts.tax", []string{"GST Paid", "COGS Tax"})

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if !models.ValidCurrency(config.FX.ReportingCurrency) {
		return fmt.Errorf("fx.reporting_currency is not an ISO 4217 code: %s", config.FX.ReportingCurrency)
	}

	if config.FX.MaxAttempts < 1 || config.FX.MaxAttempts > 10 {
		return fmt.Errorf("fx.max_attempts must be between 1 and 10, got: %d", config.FX.MaxAttempts)
	}

	if config.FX.TimeoutSeconds < 1 || config.FX.TimeoutSeconds > 300 {
		return fmt.Errorf("fx.timeout_seconds must be between 1 and 300, got: %d", config.FX.TimeoutSeconds)
	}

	if config.FX.BackoffBaseMs < 0 || config.FX.BackoffOffsetMs < 0 {
		return fmt.Errorf("fx backoff must not be negative")
	}

	// Validate CSV delimiter
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}
