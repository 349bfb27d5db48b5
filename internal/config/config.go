package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Broker   BrokerConfig
	Mail     MailConfig
	Orders   OrdersConfig
}

type ServerConfig struct {
	Host        string `validate:"required"`
	Port        int    `validate:"min=1,max=65535"`
	CORSOrigins []string
	PublicURL   string `validate:"omitempty,url"`
}

type StorageConfig struct {
	// Driver selects the repository backend: postgres or memory.
	Driver string `validate:"oneof=postgres memory"`
}

type PostgresConfig struct {
	User     string `validate:"required_if=Enabled true"`
	Password string `validate:"required_if=Enabled true"`
	Name     string `validate:"required_if=Enabled true"`
	Host     string
	Port     int `validate:"min=1,max=65535"`
	SSLMode  string
	MaxConns int32 `validate:"min=0"`
	Enabled  bool
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig with an empty Addr disables caching, rate limiting,
// idempotency and the live relay.
type RedisConfig struct {
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
	DB       int `validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret string        `validate:"required,min=16"`
	TokenTTL  time.Duration `validate:"min=1m"`
}

type PaymentConfig struct {
	HashKey    string `validate:"required"`
	MerchantID string
}

type BrokerConfig struct {
	// AMQPURL empty means order events are handled in-process.
	AMQPURL string `validate:"omitempty,url"`
}

type MailConfig struct {
	Host     string
	Port     int `validate:"omitempty,min=1,max=65535"`
	Username string
	Password string
	From     string `validate:"required_with=Host"`
}

func (c MailConfig) Enabled() bool { return c.Host != "" }

type OrdersConfig struct {
	ReservationTTL     time.Duration `validate:"min=1s"`
	SweepInterval      time.Duration `validate:"min=1s"`
	MaxTicketsPerOrder int           `validate:"min=1"`
	RateLimit          int           `validate:"min=0"`
	RateWindow         time.Duration
	IdempotencyTTL     time.Duration `validate:"min=1m"`
}

// New loads .env if present, reads the environment and validates the
// result.
func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var r reader

	cfg := &Config{
		Server: ServerConfig{
			Host:        r.str("SERVER_HOST", "localhost"),
			Port:        r.int("SERVER_PORT", 8080),
			CORSOrigins: r.list("CORS_ORIGINS", "*"),
			PublicURL:   r.str("PUBLIC_URL", ""),
		},
		Storage: StorageConfig{
			Driver: r.str("STORAGE", "postgres"),
		},
		Postgres: PostgresConfig{
			User:     r.str("POSTGRES_USER", ""),
			Password: r.str("POSTGRES_PASSWORD", ""),
			Name:     r.str("POSTGRES_DB", ""),
			Host:     r.str("POSTGRES_HOST", "localhost"),
			Port:     r.int("POSTGRES_PORT", 5432),
			SSLMode:  r.str("POSTGRES_SSLMODE", "disable"),
			MaxConns: int32(r.int("POSTGRES_MAX_CONNS", 0)),
		},
		Redis: RedisConfig{
			Addr:     r.str("REDIS_ADDR", ""),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.int("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: r.str("JWT_SECRET", ""),
			TokenTTL:  r.duration("JWT_TTL", 24*time.Hour),
		},
		Payment: PaymentConfig{
			HashKey:    r.str("ECPAY_HASH_KEY", ""),
			MerchantID: r.str("ECPAY_MERCHANT_ID", ""),
		},
		Broker: BrokerConfig{
			AMQPURL: r.str("AMQP_URL", ""),
		},
		Mail: MailConfig{
			Host:     r.str("SMTP_HOST", ""),
			Port:     r.int("SMTP_PORT", 587),
			Username: r.str("SMTP_USERNAME", ""),
			Password: r.str("SMTP_PASSWORD", ""),
			From:     r.str("SMTP_FROM", ""),
		},
		Orders: OrdersConfig{
			ReservationTTL:     r.duration("RESERVATION_TTL", 5*time.Minute),
			SweepInterval:      r.duration("SWEEP_INTERVAL", 30*time.Second),
			MaxTicketsPerOrder: r.int("MAX_TICKETS_PER_ORDER", 10),
			RateLimit:          r.int("ORDER_RATE_LIMIT", 10),
			RateWindow:         r.duration("ORDER_RATE_WINDOW", time.Minute),
			IdempotencyTTL:     r.duration("IDEMPOTENCY_TTL", 2*time.Hour),
		},
	}

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", op, r.err)
	}

	cfg.Postgres.Enabled = cfg.Storage.Driver == "postgres"

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

// reader collects the first parse error so New can report it once.
type reader struct {
	err error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

func (r *reader) list(key, def string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
