package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"RESTRICTIONS_FILE", "REGION", "CITY", "DATABASE_URL", "PG_DSN",
	"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	"TZ", "ZONE_OFFSET_MINUTES", "REFRESH_INTERVAL_SEC",
	"NATS_ENABLED", "NATS_URL", "NATS_SUBJECT", "METRICS_ADDR", "LOG_LEVEL", "TRACE_EVALUATIONS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir()) // no stray .env
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromFileSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESTRICTIONS_FILE", "restrictions.yml")
	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "restrictions.yml", cfg.RestrictionsFile)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 0, cfg.ZoneOffsetMinutes)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.NATSEnabled)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, "turns.check", cfg.NATSSubject)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TraceEvaluations)
}

func TestLoadBuildsDSNFromPGVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PGUSER", "osm")
	t.Setenv("PGPASSWORD", "p@ss")
	t.Setenv("PGHOST", "db")
	t.Setenv("REGION", "berlin")
	t.Setenv("ZONE_OFFSET_MINUTES", "-300")
	t.Setenv("REFRESH_INTERVAL_SEC", "0")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://osm:p%40ss@db:5432/postgres?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "berlin", cfg.Region)
	assert.Equal(t, -300, cfg.ZoneOffsetMinutes)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.False(t, cfg.NATSEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRequiresASource(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for k, v := range map[string]string{
		"ZONE_OFFSET_MINUTES":  "abc",
		"REFRESH_INTERVAL_SEC": "-1",
		"LOG_LEVEL":            "loud",
		"TZ":                   "Mars/Olympus",
	} {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost/osm")
			t.Setenv(k, v)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/osm")
	t.Setenv("ZONE_OFFSET_MINUTES", "2000")
	_, err := Load()
	assert.Error(t, err)
}
