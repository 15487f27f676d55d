package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Unset environment falls back to the development defaults
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("INITIAL_BALANCE", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("IS_PROD", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "ledger.db", cfg.DBPath)
	assert.Equal(t, 0.0, cfg.InitialBalance)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.False(t, cfg.IsProd)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("INITIAL_BALANCE", "100")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 100.0, cfg.InitialBalance)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProd)
}
