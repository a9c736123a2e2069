// Package referrers models the people credited for referral traffic.
//
// Hits and leads reference a referrer by its referral code only. The
// reference is deliberately weak: a code may point at nothing, and
// callers must degrade to displaying the raw code instead of treating the
// missing row as an error.
package referrers

import (
	"time"

	"gorm.io/gorm"
)

// Referrer owns a referral code and is credited for the hits and leads
// carrying it. Created out of band; read-only from the analytics side.
type Referrer struct {
	ReferralCode string    `gorm:"primaryKey;size:50" json:"referralCode"`
	Nome         string    `gorm:"not null" json:"nome"`
	Whatsapp     string    `json:"whatsapp"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Map indexes referrers by referral code for join-style lookups.
type Map map[string]Referrer

// All returns every referrer.
func All(db *gorm.DB) ([]Referrer, error) {
	var refs []Referrer
	if err := db.Order("referral_code ASC").Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// ByCodes returns the referrers matching the given codes.
func ByCodes(db *gorm.DB, codes []string) ([]Referrer, error) {
	if len(codes) == 0 {
		return []Referrer{}, nil
	}
	var refs []Referrer
	if err := db.Where("referral_code IN ?", codes).Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// BuildMap indexes a referrer slice by referral code.
func BuildMap(refs []Referrer) Map {
	m := make(Map, len(refs))
	for _, ref := range refs {
		m[ref.ReferralCode] = ref
	}
	return m
}

// DisplayName resolves a referral code to the owner's name, falling back
// to the raw code when no referrer carries it.
func (m Map) DisplayName(code string) string {
	if ref, ok := m[code]; ok {
		return ref.Nome
	}
	return code
}

// Lookup returns the referrer for a code, or nil for a dangling code.
func (m Map) Lookup(code *string) *Referrer {
	if code == nil {
		return nil
	}
	if ref, ok := m[*code]; ok {
		return &ref
	}
	return nil
}
