package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration. Both services read the same
// structure; each component validates only the sections it depends on.
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3000"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSAllowedOrigins lists browser origins allowed to send credentialed
	// requests. Empty means no cross-origin access.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	Database  DatabaseConfig
	Auth      AuthConfig
	AuthRPC   AuthRPCConfig
	Broker    BrokerConfig
	Scheduler SchedulerConfig
	Otel      OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// IsProduction reports whether cookies and logs should use production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"jobber"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"auth"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// AuthConfig holds session token and login settings
type AuthConfig struct {
	// JWTSecret signs session tokens (HS256). Required by the identity service.
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	// JWTExpiresIn is the session token lifetime; the cookie expires with it.
	JWTExpiresIn time.Duration `env:"AUTH_JWT_EXPIRES_IN" envDefault:"8h"`

	// CookieName is the credential cookie read by request guards.
	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"Authentication"`

	// BcryptCost is the password hashing cost for new identities.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// LoginRatePerMinute and LoginBurst throttle login attempts per client IP.
	LoginRatePerMinute int `env:"AUTH_LOGIN_RATE_PER_MIN" envDefault:"30"`
	LoginBurst         int `env:"AUTH_LOGIN_BURST" envDefault:"10"`
}

// Validate checks the settings the identity service cannot start without.
func (a *AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return &Error{Key: "AUTH_JWT_SECRET", Reason: "is required"}
	}
	if a.JWTExpiresIn <= 0 {
		return &Error{Key: "AUTH_JWT_EXPIRES_IN", Reason: "must be positive"}
	}
	return nil
}

// AuthRPCConfig holds the auth delegation gRPC settings
type AuthRPCConfig struct {
	// Port the identity service listens on for gRPC.
	Port int `env:"AUTH_GRPC_PORT" envDefault:"5000"`

	// URL is the gRPC target used by request guards in other services.
	URL string `env:"AUTH_GRPC_URL" envDefault:"localhost:5000"`

	// Timeout bounds a single authenticate call made by a guard.
	Timeout time.Duration `env:"AUTH_GRPC_TIMEOUT" envDefault:"3s"`
}

// Validate rejects settings that would leave guards without a deadline.
func (a *AuthRPCConfig) Validate() error {
	if a.Timeout <= 0 {
		return &Error{Key: "AUTH_GRPC_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}

// BrokerConfig holds message broker settings (Redis Streams)
type BrokerConfig struct {
	// URL is a redis:// or rediss:// URL. Required by the jobs service.
	URL string `env:"BROKER_URL"`

	// MaxRetries is handed to the broker client; the job engine never retries.
	MaxRetries int `env:"BROKER_MAX_RETRIES" envDefault:"3"`

	// StreamMaxLen trims each topic stream approximately; 0 disables trimming.
	StreamMaxLen int64 `env:"BROKER_STREAM_MAXLEN" envDefault:"10000"`
}

// Validate checks the settings the jobs service cannot start without.
func (b *BrokerConfig) Validate() error {
	if b.URL == "" {
		return &Error{Key: "BROKER_URL", Reason: "is required"}
	}
	if b.MaxRetries < 0 {
		return &Error{Key: "BROKER_MAX_RETRIES", Reason: "must not be negative"}
	}
	return nil
}

// SchedulerConfig holds cron schedules for registered jobs
type SchedulerConfig struct {
	// Schedules maps job name to a cron expression, e.g.
	// JOB_SCHEDULES="Fibonacci=@every 1h,Cleanup=0 0 3 * * *"
	Schedules map[string]string `env:"JOB_SCHEDULES" envKeyValSeparator:"="`
}

// Enabled returns true when at least one job is scheduled.
func (s *SchedulerConfig) Enabled() bool {
	return len(s.Schedules) > 0
}

// Error reports a missing or invalid startup setting. It is fatal: the
// process refuses to start.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Key, e.Reason)
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.Int("grpc_port", cfg.AuthRPC.Port),
		slog.String("auth_grpc_url", cfg.AuthRPC.URL),
	)

	return cfg, nil
}
