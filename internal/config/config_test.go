package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/travel")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "NGN", cfg.Payment.Currency)
	assert.Equal(t, 30*time.Second, cfg.Payment.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Cron.ReconcileAfter)
	assert.Equal(t, "tours", cfg.Elasticsearch.Index)
	assert.Empty(t, cfg.Elasticsearch.Addresses)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PAYMENT_REQUEST_TIMEOUT", "5")
	t.Setenv("DATABASE_MAX_CONNECTIONS", "not-a-number")
	t.Setenv("CRON_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Payment.RequestTimeout)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.False(t, cfg.Cron.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Environment: "development"},
			Database: DatabaseConfig{URL: "postgres://x"},
			JWT:      JWTConfig{Secret: "a", RefreshSecret: "b"},
			Payment:  PaymentConfig{Currency: "NGN", Environment: "sandbox"},
			Upload:   UploadConfig{MaxSizeMB: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development", func(c *Config) {}, ""},
		{"missing database", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing refresh secret", func(c *Config) { c.JWT.RefreshSecret = "" }, "JWT_REFRESH_SECRET"},
		{"bad currency", func(c *Config) { c.Payment.Currency = "NAIRA" }, "PAYMENT_CURRENCY"},
		{"production without key", func(c *Config) { c.Server.Environment = "production" }, "PAYMENT_SECRET_KEY"},
		{"production with sandbox gateway", func(c *Config) {
			c.Server.Environment = "production"
			c.Payment.SecretKey = "sk_live"
		}, "PAYMENT_ENVIRONMENT"},
		{"production ok", func(c *Config) {
			c.Server.Environment = "production"
			c.Payment.SecretKey = "sk_live"
			c.Payment.Environment = "production"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
