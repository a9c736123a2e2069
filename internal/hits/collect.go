package hits

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reftrack/internal/pkg/geoip"
	"reftrack/internal/pkg/useragent"
)

// CollectInput carries everything a tracking request tells us about a
// click. All fields except ReferralCode are best-effort.
type CollectInput struct {
	ReferralCode string
	IP           string
	UserAgent    string
	ReferrerURL  string
	UTMSource    string
	UTMMedium    string
	UTMCampaign  string
	ScreenWidth  int
	ScreenHeight int
	Language     string
	Timezone     string
}

// Collect records a hit for a referral code. The code is not checked
// against the referrers table: dangling codes are stored as-is and
// resolved (or not) at read time. Device, OS and browser are classified
// from the User-Agent; country, city and region come from the optional
// GeoLite2 resolver and stay null when it is unavailable.
func Collect(db *gorm.DB, geo *geoip.Resolver, in CollectInput) (*Hit, error) {
	hit := Hit{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		IP:           optional(in.IP),
		UserAgent:    optional(in.UserAgent),
		ReferralCode: optional(in.ReferralCode),
		ReferrerURL:  optional(in.ReferrerURL),
		UTMSource:    optional(in.UTMSource),
		UTMMedium:    optional(in.UTMMedium),
		UTMCampaign:  optional(in.UTMCampaign),
		ScreenWidth:  optionalInt(in.ScreenWidth),
		ScreenHeight: optionalInt(in.ScreenHeight),
		Language:     optional(in.Language),
		Timezone:     optional(in.Timezone),
	}

	if in.UserAgent != "" {
		ua := useragent.Classify(in.UserAgent)
		hit.DeviceType = optional(ua.DeviceType)
		hit.OS = optional(ua.OS)
		hit.Browser = optional(ua.Browser)
	}

	if geo != nil && in.IP != "" {
		loc := geo.Lookup(in.IP)
		hit.Country = optional(loc.Country)
		hit.City = optional(loc.City)
		hit.Region = optional(loc.Region)
	}

	if err := db.Create(&hit).Error; err != nil {
		return nil, fmt.Errorf("error recording hit: %w", err)
	}
	return &hit, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
