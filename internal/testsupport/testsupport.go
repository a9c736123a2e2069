// Package testsupport provides shared helpers for package tests:
// in-memory databases with the full schema, a quiet logger, and fixture
// builders for referrers, hits and leads.
package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reftrack/internal/database"
	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

// testDBCache caches test databases by root test name so setup helpers
// called from subtests share the same database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// SetupTestDB creates a migrated test database. It uses a named
// in-memory database with cache=shared so multiple connections within a
// test see the same data, and registers cleanup on the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a logger that discards everything. Tests that
// assert on log output build their own.
func GetLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// CreateTestReferrer inserts a referrer with the given code.
func CreateTestReferrer(t *testing.T, db *gorm.DB, code, nome string) referrers.Referrer {
	t.Helper()

	ref := referrers.Referrer{
		ReferralCode: code,
		Nome:         nome,
		Whatsapp:     "11999999999",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Create(&ref).Error; err != nil {
		t.Fatalf("testsupport: failed to create referrer: %v", err)
	}
	return ref
}

// HitOption mutates a hit fixture before insert.
type HitOption func(*hits.Hit)

// WithHitTime sets the hit timestamp.
func WithHitTime(at time.Time) HitOption {
	return func(h *hits.Hit) { h.CreatedAt = at.UTC() }
}

// WithHitIP sets the hit IP.
func WithHitIP(ip string) HitOption {
	return func(h *hits.Hit) { h.IP = &ip }
}

// WithHitDevice sets device type, OS and browser.
func WithHitDevice(deviceType, os, browser string) HitOption {
	return func(h *hits.Hit) {
		h.DeviceType = &deviceType
		h.OS = &os
		h.Browser = &browser
	}
}

// WithHitCountry sets the country code.
func WithHitCountry(country string) HitOption {
	return func(h *hits.Hit) { h.Country = &country }
}

// WithHitCity sets city and region.
func WithHitCity(city, region string) HitOption {
	return func(h *hits.Hit) {
		h.City = &city
		h.Region = &region
	}
}

// CreateTestHit inserts a hit for a referral code. An empty code stores
// a null code. Defaults: now, IP 10.0.0.1.
func CreateTestHit(t *testing.T, db *gorm.DB, referralCode string, opts ...HitOption) hits.Hit {
	t.Helper()

	ip := "10.0.0.1"
	hit := hits.Hit{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		IP:        &ip,
	}
	if referralCode != "" {
		hit.ReferralCode = &referralCode
	}
	for _, opt := range opts {
		opt(&hit)
	}

	if err := db.Create(&hit).Error; err != nil {
		t.Fatalf("testsupport: failed to create hit: %v", err)
	}
	return hit
}

// LeadOption mutates a lead fixture before insert.
type LeadOption func(*leads.Lead)

// WithLeadStage sets the pipeline stage.
func WithLeadStage(stage leads.Stage) LeadOption {
	return func(l *leads.Lead) { l.Stage = stage }
}

// WithLeadTime sets the lead timestamp.
func WithLeadTime(at time.Time) LeadOption {
	return func(l *leads.Lead) { l.CreatedAt = at.UTC() }
}

// CreateTestLead inserts a lead attributed to a referral code. An empty
// code stores a null code. Defaults: stage NA_BASE, now.
func CreateTestLead(t *testing.T, db *gorm.DB, nome, referralCode string, opts ...LeadOption) leads.Lead {
	t.Helper()

	lead := leads.Lead{
		ID:        uuid.NewString(),
		Nome:      nome,
		Whatsapp:  "11988887777",
		Stage:     leads.StageNaBase,
		CreatedAt: time.Now().UTC(),
	}
	if referralCode != "" {
		lead.ReferralCode = &referralCode
	}
	for _, opt := range opts {
		opt(&lead)
	}

	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("testsupport: failed to create lead: %v", err)
	}
	return lead
}
