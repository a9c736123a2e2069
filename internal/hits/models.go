package hits

import "time"

// Hit is one recorded referral-link click event. Immutable once created.
//
// Most attributes are optional: the tracking payload is best-effort and
// older clients send only a subset. ReferralCode is a weak reference to
// referrers.Referrer and may point at nothing.
type Hit struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt    time.Time `gorm:"index;not null" json:"createdAt"`
	IP           *string   `json:"ip"`
	UserAgent    *string   `json:"userAgent"`
	ReferralCode *string   `gorm:"index;size:50" json:"referralCode"`
	ReferrerURL  *string   `gorm:"column:referrer_url" json:"referrerUrl"`
	UTMSource    *string   `gorm:"column:utm_source" json:"utmSource"`
	UTMMedium    *string   `gorm:"column:utm_medium" json:"utmMedium"`
	UTMCampaign  *string   `gorm:"column:utm_campaign" json:"utmCampaign"`
	DeviceType   *string   `gorm:"index" json:"deviceType"`
	OS           *string   `gorm:"column:os;index" json:"os"`
	Browser      *string   `gorm:"index" json:"browser"`
	ScreenWidth  *int      `json:"screenWidth"`
	ScreenHeight *int      `json:"screenHeight"`
	Country      *string   `gorm:"index;size:2" json:"country"`
	City         *string   `json:"city"`
	Region       *string   `json:"region"`
	Language     *string   `json:"language"`
	Timezone     *string   `json:"timezone"`
}
