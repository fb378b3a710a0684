package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("IMPORT_RATE_PER_MINUTE", "")

	cfg := Load()

	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, int32(16), cfg.MaxDBConns)
	assert.Equal(t, "read_committed", cfg.TxIsolation)
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 6, cfg.ImportRatePerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("TX_ISOLATION", "SERIALIZABLE")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "serializable", cfg.TxIsolation)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}
