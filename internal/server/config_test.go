package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"household/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG", "ADDR", "PORT", "STORE", "DB_STR", "MIGRATE_PATH", "IDENTITY",
		"FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS", "TOKEN_SECRET", "TOKEN_TTL",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_BODY_BYTES",
		"LOG_LEVEL", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ReadConfig(nil)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Addr)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, IdentityLocal, cfg.Identity)
	assert.Equal(t, "migrations", cfg.MigratePath)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
	assert.NotEmpty(t, cfg.TokenSecret)
	assert.True(t, cfg.EphemeralSecret)
}

func TestReadConfigPrecedence(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: 10.0.0.1
port: 9000
log_level: warn
token_secret: from-file
cors_origins:
  - https://app.example.com
`), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := ReadConfig([]string{"-c", path, "-log-level", "debug"})

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Addr)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-file", cfg.TokenSecret)
	assert.False(t, cfg.EphemeralSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestReadConfigFlagsOverrideEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORE", "memory")
	t.Setenv("ADDR", "1.2.3.4")

	cfg, err := ReadConfig([]string{"-store", "postgres", "-dbstr", "postgres://localhost/db", "-port", "7000"})

	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://localhost/db", cfg.DBStr)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "1.2.3.4", cfg.Addr)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want error
	}{
		{name: "unknown store", env: map[string]string{"STORE": "redis"}, want: errors.ErrConfigInvalid},
		{name: "postgres without connection string", env: map[string]string{"STORE": "postgres"}, want: errors.ErrConfigInvalid},
		{name: "firebase without project", env: map[string]string{"IDENTITY": "firebase"}, want: errors.ErrConfigInvalid},
		{name: "port out of range", args: []string{"-port", "70000"}, want: errors.ErrConfigInvalid},
		{name: "unknown flag", args: []string{"-nope"}, want: errors.ErrConfigInvalid},
		{name: "missing config file", args: []string{"-c", "/does/not/exist.yaml"}, want: errors.ErrConfigFileReadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := ReadConfig(tt.args)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, cfg)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc ", want: "abc"},
		{header: "Bearer", want: ""},
		{header: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}
