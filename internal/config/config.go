package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/trimly/accounts/pkg/config"
)

// Config holds all configuration for the accounts service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"ACCOUNTS_HTTP_PORT" envDefault:"8004"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"trimly"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"trimly_secret"`
	PostgresDB   string `env:"ACCOUNTS_DB_NAME" envDefault:"accounts_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (session store)
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Payment provider. "stripe" talks to the Stripe API; "mock" keeps
	// everything in memory for local development.
	PaymentProvider  string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	StripeAPIKey     string `env:"STRIPE_API_KEY" envDefault:""`
	StripeBaseURL    string `env:"STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
	StripeRefreshURL string `env:"STRIPE_ONBOARDING_REFRESH_URL" envDefault:"http://localhost:3000/onboarding/refresh"`
	StripeReturnURL  string `env:"STRIPE_ONBOARDING_RETURN_URL" envDefault:"http://localhost:3000/onboarding/return"`
	StripeCurrency   string `env:"STRIPE_CURRENCY" envDefault:"usd"`

	// Password hashing
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load accounts config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	switch cfg.PaymentProvider {
	case "mock":
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("the mock payment provider is not allowed in %q mode", cfg.Environment)
		}
	case "stripe":
		if cfg.StripeAPIKey == "" {
			return nil, fmt.Errorf("STRIPE_API_KEY must be set when PAYMENT_PROVIDER=stripe")
		}
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
