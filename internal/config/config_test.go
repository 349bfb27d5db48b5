package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setenv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestNewMemoryDefaults(t *testing.T) {
	setenv(t, map[string]string{
		"STORAGE":        "memory",
		"JWT_SECRET":     "0123456789abcdef",
		"ECPAY_HASH_KEY": "pwFHCqoQZGmho4w6",
		"CORS_ORIGINS":   "https://a.example, https://b.example",
	})

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Postgres.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Orders.ReservationTTL)
	assert.Equal(t, 10, cfg.Orders.MaxTicketsPerOrder)
	assert.False(t, cfg.Mail.Enabled())
}

func TestNewRejects(t *testing.T) {
	base := map[string]string{
		"STORAGE":        "memory",
		"JWT_SECRET":     "0123456789abcdef",
		"ECPAY_HASH_KEY": "k",
	}

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without credentials", map[string]string{"STORAGE": "postgres"}},
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad port", map[string]string{"SERVER_PORT": "http"}},
		{"bad duration", map[string]string{"RESERVATION_TTL": "soon"}},
		{"smtp without sender", map[string]string{"SMTP_HOST": "smtp.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setenv(t, base)
			setenv(t, tt.env)

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := PostgresConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "tickets", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/tickets?sslmode=disable", c.DSN())
}
