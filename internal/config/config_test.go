package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, CashPolicyManual, cfg.CashReceivedPolicy)
	assert.False(t, cfg.SaleRequirePlate)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.AssistantEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CASH_RECEIVED_POLICY", "auto")
	t.Setenv("SALE_REQUIRE_PLATE", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, CashPolicyAuto, cfg.CashReceivedPolicy)
	assert.True(t, cfg.SaleRequirePlate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AssistantEnabled())
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: "sqlite", DBDSN: "x", JWTSecret: "s", CashReceivedPolicy: CashPolicyManual}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dsn", func(c *Config) { c.DBDSN = "" }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"bad driver", func(c *Config) { c.DBDriver = "oracle" }},
		{"bad policy", func(c *Config) { c.CashReceivedPolicy = "guess" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
