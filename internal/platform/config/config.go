package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"KYCPORTAL_ADDR" envDefault:":8080"`
	Environment   string `env:"KYCPORTAL_ENV" envDefault:"development"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"kycportal"`
	AdminAPIToken string `env:"ADMIN_API_TOKEN"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Onboarding     OnboardingConfig
	AccountService AccountServiceConfig
	Redis          RedisConfig
	Database       DatabaseConfig
	Kafka          KafkaConfig
	Tracing        TracingConfig
}

// OnboardingConfig bounds wizard sessions and submissions.
type OnboardingConfig struct {
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionSweep       time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
	SubmissionTimeout  time.Duration `env:"SUBMISSION_TIMEOUT" envDefault:"60s"`
	MaxAttachmentBytes int64         `env:"MAX_ATTACHMENT_BYTES" envDefault:"10485760"`
	EncodeConcurrency  int           `env:"ENCODE_CONCURRENCY" envDefault:"4"`
}

// AccountServiceConfig points at the downstream account service.
type AccountServiceConfig struct {
	URL              string        `env:"ACCOUNT_SERVICE_URL" envDefault:"http://localhost:9090"`
	Timeout          time.Duration `env:"ACCOUNT_SERVICE_TIMEOUT" envDefault:"15s"`
	BreakerThreshold int           `env:"ACCOUNT_SERVICE_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"ACCOUNT_SERVICE_BREAKER_COOLDOWN" envDefault:"30s"`
}

// RedisConfig configures the submission guard and user state cache. An empty
// URL keeps both in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// DatabaseConfig configures the submission ledger. An empty URL keeps the
// ledger in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig configures the audit stream. Without brokers audit events stay
// in memory.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"AUDIT_TOPIC" envDefault:"kycportal.onboarding.audit"`
	ClientID   string   `env:"KAFKA_CLIENT_ID" envDefault:"kycportal"`
}

// TracingConfig enables OTLP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"kycportal"`
}

// IsProduction reports whether development defaults must be rejected.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s Server) validate() error {
	if s.IsProduction() && s.JWTSigningKey == "dev-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if s.Onboarding.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive")
	}
	if s.Onboarding.SubmissionTimeout <= 0 {
		return fmt.Errorf("SUBMISSION_TIMEOUT must be positive")
	}
	return nil
}
