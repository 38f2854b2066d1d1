package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Hasib072/BookNest/pkg/config"
)

// Config holds all configuration for the booknest service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"booknest"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"booknest_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"booknest"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (resend-verification rate limiting)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT session
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"168h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`

	// Resend-verification rate limit
	ResendLimit  int           `env:"RESEND_VERIFICATION_LIMIT" envDefault:"5"`
	ResendWindow time.Duration `env:"RESEND_VERIFICATION_WINDOW" envDefault:"1h"`

	// Cover image storage
	MediaDir string `env:"MEDIA_DIR" envDefault:"./media"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load booknest config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.ResendLimit < 1 {
		return nil, fmt.Errorf("invalid resend verification limit: %d", cfg.ResendLimit)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// MediaBaseURL returns the public URL prefix under which locally stored
// cover images are served.
func (c *Config) MediaBaseURL() string {
	return c.BaseURL + "/media"
}
