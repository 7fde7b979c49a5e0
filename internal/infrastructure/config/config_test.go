package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, MailLog, cfg.Mail.Provider)
	assert.Equal(t, 4, cfg.Notifications.Workers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"ENV":             "production",
		"STORE_DRIVER":    "postgres",
		"TOKEN_TTL":       "2h",
		"CORS_ORIGINS":    "https://a.org,https://b.org",
		"MAIL_PROVIDER":   "mailgun",
		"MAILGUN_DOMAIN":  "mg.huahuacuna.org",
		"MAILGUN_API_KEY": "key",
		"NOTIFY_WORKERS":  "8",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, cfg.CORSOrigins)
	assert.Equal(t, "mg.huahuacuna.org", cfg.Mail.Domain)
	assert.Equal(t, 8, cfg.Notifications.Workers)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown store", map[string]string{"JWT_SECRET": secret, "STORE_DRIVER": "sqlite"}},
		{"mailgun without key", map[string]string{"JWT_SECRET": secret, "MAIL_PROVIDER": "mailgun"}},
		{"unknown mail provider", map[string]string{"JWT_SECRET": secret, "MAIL_PROVIDER": "smtp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}
