package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "arcana", cfg.DBName)
	assert.Equal(t, "arcana", cfg.DBUser)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Duration(0.12*float64(time.Second)), cfg.RateMinDelay)
	assert.Equal(t, 900*time.Second, cfg.IngestWindow)
	assert.Equal(t, 1000, cfg.IngestBatchSize)
	assert.Equal(t, 900*time.Second, cfg.DaemonInterval)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("ARCANA_DB_HOST", "db.internal")
	t.Setenv("ARCANA_DB_PORT", "6543")
	t.Setenv("ARCANA_LOG_LEVEL", "debug")
	t.Setenv("ARCANA_INGEST_BATCH_SIZE", "250")
	t.Setenv("ARCANA_RATE_MIN_DELAY_SECONDS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250, cfg.IngestBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.RateMinDelay)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("ARCANA_DB_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadFloat(t *testing.T) {
	t.Setenv("ARCANA_RATE_MIN_DELAY_SECONDS", "not-a-float")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnrecognizedLogLevel(t *testing.T) {
	t.Setenv("ARCANA_LOG_LEVEL", "verbose")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAcceptsUppercaseLogLevel(t *testing.T) {
	t.Setenv("ARCANA_LOG_LEVEL", "DEBUG")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	t.Setenv("ARCANA_DB_PORT", "99999")
	_, err := Load()
	assert.Error(t, err)
}
