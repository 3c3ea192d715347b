package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Security    SecurityConfig
	Webhooks    WebhookConfig
	SMTP        SMTPConfig
	Payouts     PayoutConfig
	Store       StoreConfig
	Environment string
	PortalURL   string
	OpsEmail    string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SecurityConfig struct {
	// JWTSecret signs session tokens and impersonation cookies
	JWTSecret string
}

// WebhookConfig holds the per-provider shared secrets. A provider whose secret
// is empty is not registered at all; there is no unverified fallback.
type WebhookConfig struct {
	CalendlySecret string
	ESignToken     string
	TipaltiSecret  string
	StripeSecret   string
	ClerkSecret    string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type PayoutConfig struct {
	APIBaseURL string
	APIKey     string
	PayerName  string
	// CommissionCentsPerDevice is the flat monthly commission per active device
	CommissionCentsPerDevice int64
}

type StoreConfig struct {
	StripeAPIKey string
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "skyyield")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// SMTP defaults
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "SkyYield")

	// Payout defaults
	v.SetDefault("TIPALTI_API_BASE_URL", "https://api.tipalti.com")
	v.SetDefault("COMMISSION_CENTS_PER_DEVICE", 2500)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Security: SecurityConfig{
			JWTSecret: jwtSecret,
		},
		Webhooks: WebhookConfig{
			CalendlySecret: v.GetString("CALENDLY_WEBHOOK_SECRET"),
			ESignToken:     v.GetString("ESIGN_WEBHOOK_TOKEN"),
			TipaltiSecret:  v.GetString("TIPALTI_WEBHOOK_SECRET"),
			StripeSecret:   v.GetString("STRIPE_WEBHOOK_SECRET"),
			ClerkSecret:    v.GetString("CLERK_WEBHOOK_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Payouts: PayoutConfig{
			APIBaseURL:               v.GetString("TIPALTI_API_BASE_URL"),
			APIKey:                   v.GetString("TIPALTI_API_KEY"),
			PayerName:                v.GetString("TIPALTI_PAYER_NAME"),
			CommissionCentsPerDevice: v.GetInt64("COMMISSION_CENTS_PER_DEVICE"),
		},
		Store: StoreConfig{
			StripeAPIKey: v.GetString("STRIPE_API_KEY"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		PortalURL:   v.GetString("PORTAL_URL"),
		OpsEmail:    v.GetString("OPS_EMAIL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
