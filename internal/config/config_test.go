package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: bot-token
database:
  host: db
  port: 6432
  user: rooms
  password: secret
  name: rooms
log:
  level: debug
  format: console
api:
  addr: ":9090"
  jwtSecret: s3cr3t
reconcile:
  interval: 5m
  concurrency: 4
emptyGracePeriod: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bot-token", cfg.Discord.Token)
	assert.Equal(t, "host=db port=6432 user=rooms password=secret dbname=rooms sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.API.Addr)
	assert.Equal(t, 24*time.Hour, cfg.API.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, 4, cfg.Reconcile.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.EmptyGracePeriod)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "discord:\n  token: from-file\napi:\n  jwtSecret: s\n")
	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("RECONCILE_INTERVAL", "1m")
	t.Setenv("RECONCILE_CONCURRENCY", "8")
	t.Setenv("EMPTY_GRACE_PERIOD", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, 8, cfg.Reconcile.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.EmptyGracePeriod)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "t")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 10*time.Minute, cfg.Reconcile.Interval)
	assert.Zero(t, cfg.Reconcile.Concurrency)
	assert.Zero(t, cfg.EmptyGracePeriod)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "no token", body: "api:\n  jwtSecret: s\n"},
		{name: "no jwt secret", body: "discord:\n  token: t\n"},
		{name: "bad format", body: "discord:\n  token: t\napi:\n  jwtSecret: s\nlog:\n  format: xml\n"},
		{name: "negative concurrency", body: "discord:\n  token: t\napi:\n  jwtSecret: s\nreconcile:\n  concurrency: -1\n"},
		{name: "bad env duration", body: "discord:\n  token: t\napi:\n  jwtSecret: s\n", env: map[string]string{"EMPTY_GRACE_PERIOD": "soon"}},
		{name: "bad yaml", body: "discord: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
