// Package database manages the SQLite connection and schema migrations.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reftrack/internal/config"
	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

// Manager owns the gorm connection for the lifetime of the process.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

// NewManager creates a database manager; Init must be called before use.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Init opens the SQLite database, applies pragmas and sizes the pool.
func (m *Manager) Init() error {
	if dir := filepath.Dir(m.cfg.DatabaseName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	gormLogLevel := gormlogger.Silent
	if m.cfg.IsDevelopment() {
		gormLogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(sqlite.Open(m.cfg.DatabaseName), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", m.cfg.DatabaseName, err)
	}

	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA busy_timeout = 5000")
	db.Exec("PRAGMA foreign_keys = ON")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(m.cfg.GetMaxIdleConns())

	m.db = db
	m.logger.Info("Database connection initialized", slog.String("path", m.cfg.DatabaseName))
	return nil
}

// GetConnection returns the active gorm connection, or nil before Init.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Migrate runs schema migrations for all models in a transaction.
func (m *Manager) Migrate() error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(Models()...)
	})
	if err != nil {
		m.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	m.logger.Info("Database migration completed successfully")
	return nil
}

// Close shuts down the connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models returns every persisted model, in migration order.
func Models() []any {
	return []any{
		&referrers.Referrer{},
		&hits.Hit{},
		&leads.Lead{},
	}
}
