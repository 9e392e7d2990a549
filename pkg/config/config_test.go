package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/pkg/config"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_LOCK_TTL_SECONDS", "5")
	t.Setenv("PHONE_REGION", "co")
	t.Setenv("DB_PASSWORD", "p@ss:word")
	t.Setenv("DB_STATEMENT_TIMEOUT_MS", "2500")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 5*time.Second, cfg.Redis.SnapshotMaxAge)
	assert.Equal(t, "CO", cfg.Locale.PhoneRegion)
	assert.Equal(t, 14, cfg.Billing.TrialDays)
	assert.Contains(t, cfg.DB.DSN(), "p%40ss%3Aword")
	assert.Equal(t, 2500*time.Millisecond, cfg.DB.StatementTimeout)
	assert.EqualValues(t, 25, cfg.DB.MaxConns)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}
