package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DatabaseHost       string `mapstructure:"DB_HOST"`
	DatabasePort       string `mapstructure:"DB_PORT"`
	DatabaseUser       string `mapstructure:"DB_USER"`
	DatabasePassword   string `mapstructure:"DB_PASSWORD"`
	DatabaseName       string `mapstructure:"DB_NAME"`
	DatabaseSSLMode    string `mapstructure:"DB_SSL_MODE"`
	EnableRowPolicies  bool   `mapstructure:"DB_ENABLE_ROW_POLICIES"`

	// JWT configuration
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// CORS configuration
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// Billing provider configuration
	BillingAPIBaseURL        string `mapstructure:"BILLING_API_BASE_URL"`
	BillingAPIKey            string `mapstructure:"BILLING_API_KEY"`
	BillingWebhookSecret     string `mapstructure:"BILLING_WEBHOOK_SECRET"`
	BillingProrationEnabled  bool   `mapstructure:"BILLING_PRORATION_ENABLED"`
	BillingSyncTimeoutSec    int    `mapstructure:"BILLING_SYNC_TIMEOUT_SEC"`
	BillingSyncMaxRetries    int    `mapstructure:"BILLING_SYNC_MAX_RETRIES"`
	BillingGracePeriodDays   int    `mapstructure:"BILLING_GRACE_PERIOD_DAYS"`
	ReconcileIntervalMinutes int    `mapstructure:"BILLING_RECONCILE_INTERVAL_MIN"`

	// Plan catalog file (seat allowances per plan)
	PlansFile string `mapstructure:"PLANS_FILE"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.DatabaseURL == "" {
		config.DatabaseURL = buildDatabaseURL(&config)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "7009")
	viper.SetDefault("LOG_LEVEL", "info")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "timetracker")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_ENABLE_ROW_POLICIES", false)

	// JWT defaults
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")

	// CORS defaults
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"})

	// Billing defaults
	viper.SetDefault("BILLING_API_BASE_URL", "https://api.billing.example.com")
	viper.SetDefault("BILLING_API_KEY", "")
	viper.SetDefault("BILLING_WEBHOOK_SECRET", "")
	viper.SetDefault("BILLING_PRORATION_ENABLED", true)
	viper.SetDefault("BILLING_SYNC_TIMEOUT_SEC", 10)
	viper.SetDefault("BILLING_SYNC_MAX_RETRIES", 3)
	viper.SetDefault("BILLING_GRACE_PERIOD_DAYS", 14)
	viper.SetDefault("BILLING_RECONCILE_INTERVAL_MIN", 60)

	viper.SetDefault("PLANS_FILE", "config/plans.yaml")
}

func buildDatabaseURL(config *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseName,
		config.DatabaseSSLMode,
	)
}

func validate(config *Config) error {
	if config.Environment == "production" {
		if config.JWTSecret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if config.BillingWebhookSecret == "" {
			return fmt.Errorf("BILLING_WEBHOOK_SECRET must be set in production")
		}
	}

	if config.DatabaseName == "" {
		return fmt.Errorf("database name is required")
	}

	if config.BillingSyncMaxRetries < 0 {
		return fmt.Errorf("BILLING_SYNC_MAX_RETRIES must not be negative")
	}

	return nil
}

// BillingSyncTimeout returns the bounded timeout for outbound provider calls.
func (c *Config) BillingSyncTimeout() time.Duration {
	return time.Duration(c.BillingSyncTimeoutSec) * time.Second
}

// BillingGracePeriod returns how long a past_due organization keeps full
// feature access before gating narrows it.
func (c *Config) BillingGracePeriod() time.Duration {
	return time.Duration(c.BillingGracePeriodDays) * 24 * time.Hour
}

// ReconcileInterval returns how often the reconciliation job runs.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalMinutes) * time.Minute
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
