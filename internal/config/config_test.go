package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	// пустые переменные viper считает незаданными
	for _, k := range []string{"ENV", "HOST", "PORT", "DATABASE_URL", "SESSION_MAX_AGE", "LOGIN_RATE_LIMIT", "ALLOW_ADMIN_CONTACT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "sqlite:castingcall.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 30, cfg.LoginRateLimit)
	assert.False(t, cfg.AllowAdminContact)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/castingcall?sslmode=disable")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ADMIN_CONTACT", "true")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("LOGIN_RATE_LIMIT", "0")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, "hunter22", cfg.AdminPassword)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.AllowAdminContact)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 0, cfg.LoginRateLimit)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "castingcall.yaml")
	body := "env: production\nlog_format: json\nport: \"7070\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "from-env", cfg.SecretKey)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestValidate(t *testing.T) {
	base := Config{
		SecretKey:     "x",
		DatabaseURL:   "sqlite::memory:",
		Port:          "8080",
		SessionMaxAge: time.Hour,
		BcryptCost:    10,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.BcryptCost = 2
	assert.Error(t, bad.Validate())

	bad = base
	bad.LoginRateLimit = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.SessionMaxAge = 0
	assert.Error(t, bad.Validate())
}
