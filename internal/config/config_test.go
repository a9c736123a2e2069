package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg := GetConfig()

	assert.Equal(t, "reftrack", cfg.AppName)
	assert.Equal(t, "3333", cfg.AppPort)
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 24, cfg.TokenTTLHours)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestGetConfigEnvOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("REFTRACK_ENV", Test)
	t.Setenv("REFTRACK_APP_PORT", "8080")
	t.Setenv("REFTRACK_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("REFTRACK_GEO_DB_PATH", "/data/GeoLite2-City.mmdb")

	cfg := GetConfig()

	assert.Equal(t, Test, cfg.Environment)
	assert.True(t, cfg.IsTest())
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, "/data/GeoLite2-City.mmdb", cfg.GeoDBPath)
}

func TestGetConfigIsCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first := GetConfig()
	second := GetConfig()
	require.Same(t, first, second)
}

func TestGetDatabasePath(t *testing.T) {
	cfg := &Config{AppName: "reftrack", Environment: Test, DatabasePath: "storage"}
	assert.Equal(t, "storage/reftrack-test.db", cfg.GetDatabasePath())

	// Derived once, then stable.
	cfg.Environment = Production
	assert.Equal(t, "storage/reftrack-test.db", cfg.GetDatabasePath())
}

func TestConnectionPoolSizing(t *testing.T) {
	t.Run("test environment pins a single connection", func(t *testing.T) {
		cfg := &Config{Environment: Test}
		assert.Equal(t, 1, cfg.GetMaxOpenConns())
		assert.Equal(t, 1, cfg.GetMaxIdleConns())
	})

	t.Run("production uses the pool defaults", func(t *testing.T) {
		cfg := &Config{Environment: Production}
		assert.Equal(t, 10, cfg.GetMaxOpenConns())
		assert.Equal(t, 5, cfg.GetMaxIdleConns())
	})

	t.Run("explicit settings win", func(t *testing.T) {
		cfg := &Config{Environment: Test, DatabaseMaxOpenConns: 4, DatabaseMaxIdleConns: 2}
		assert.Equal(t, 4, cfg.GetMaxOpenConns())
		assert.Equal(t, 2, cfg.GetMaxIdleConns())
	})
}

func TestValidate(t *testing.T) {
	valid := &Config{Environment: Test, TokenTTLHours: 24}
	assert.NoError(t, valid.validate())

	badEnv := &Config{Environment: "staging", TokenTTLHours: 24}
	assert.Error(t, badEnv.validate())

	badTTL := &Config{Environment: Test, TokenTTLHours: 0}
	assert.Error(t, badTTL.validate())
}
