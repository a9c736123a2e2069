// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application.
// It is constructed once at startup and passed by reference to the
// components that need it; nothing below the wiring layer reads it
// ambiently.
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Admin authentication
	AdminEmail        string `mapstructure:"adminemail"`
	AdminPasswordHash string `mapstructure:"adminpasswordhash"`
	JWTSecret         string `mapstructure:"jwtsecret"`
	TokenTTLHours     int    `mapstructure:"tokenttlhours"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	GeoDBPath    string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "reftrack")
		v.SetDefault("appport", "3333")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("adminemail", "admin@localhost")
		v.SetDefault("jwtsecret", "88888888888888888888888888888888")
		v.SetDefault("tokenttlhours", 24)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("geodbpath", "")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)

		// Bind environment variables
		v.BindEnv("appname", "REFTRACK_APP_NAME")
		v.BindEnv("appport", "REFTRACK_APP_PORT")
		v.BindEnv("environment", "REFTRACK_ENV")
		v.BindEnv("loglevel", "REFTRACK_LOG_LEVEL")
		v.BindEnv("adminemail", "REFTRACK_ADMIN_EMAIL")
		v.BindEnv("adminpasswordhash", "REFTRACK_ADMIN_PASSWORD_HASH")
		v.BindEnv("jwtsecret", "REFTRACK_JWT_SECRET")
		v.BindEnv("tokenttlhours", "REFTRACK_TOKEN_TTL_HOURS")
		v.BindEnv("storagepath", "REFTRACK_STORAGE_PATH")
		v.BindEnv("geodbpath", "REFTRACK_GEO_DB_PATH")
		v.BindEnv("logsdir", "REFTRACK_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "REFTRACK_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "REFTRACK_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "REFTRACK_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "REFTRACK_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "REFTRACK_DB_MAX_IDLE_CONNS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()

		// The JWT secret must be explicitly set in production (not empty, not default)
		defaultSecret := "88888888888888888888888888888888"
		if cfg.JWTSecret == "" {
			log.Fatal("JWT secret is required")
		}
		if cfg.IsProduction() && cfg.JWTSecret == defaultSecret {
			log.Fatal("Production requires a unique REFTRACK_JWT_SECRET (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("invalid token TTL: %d hours", c.TokenTTLHours)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for in-memory SQLite stability)
// - Development/Production: 10 (allows concurrent reads for parallel dashboard queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
