// Package analytics derives every dashboard view from raw hits and
// leads.
//
// The package is organized into focused modules:
//   - engine.go:  the aggregation engine (summary, timeline, distributions,
//     funnel, heatmaps, top referrers) computed over an in-memory snapshot
//   - clicks.go:  paginated click listings with referrer join and IP masking
//   - catalog.go: distinct value sets for populating filter controls
//   - stats.go:   the lead-only pipeline rollup
//
// Aggregation is deliberately snapshot-then-compute: the store fetches
// the window's hits and leads once per request and the engine reduces
// them as a pure function. Correctness does not depend on volume, but
// request cost is O(|hits|+|leads|), which assumes moderate event
// volumes; a web-scale deployment would push these aggregations down
// into the store without changing the output contract.
package analytics

import (
	"math"

	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/referrers"
	"reftrack/internal/timeframe"
)

// UnknownValue is the sentinel bucket for hits missing a dimension
// value. The null-to-sentinel normalization is an explicit step applied
// before grouping, not a side effect of map keys.
const UnknownValue = "Unknown"

// conversionValue is the fixed earnings credited per converted lead.
const conversionValue = 60

// Snapshot is the point-in-time input to the aggregation engine: hits
// and leads already restricted to the active window and filters, the
// full referrer set, and the hit count of the preceding equal-length
// window.
type Snapshot struct {
	Window         timeframe.Window
	Hits           []hits.Hit
	Leads          []leads.Lead
	Referrers      []referrers.Referrer
	PreviousClicks int64
}

// Summary holds the headline metrics of a dashboard window.
type Summary struct {
	TotalClicks          int     `json:"totalClicks"`
	UniqueClicks         int     `json:"uniqueClicks"`
	TotalLeads           int     `json:"totalLeads"`
	ConvertedLeads       int     `json:"convertedLeads"`
	ClickToLeadRate      float64 `json:"clickToLeadRate"`
	LeadToConversionRate float64 `json:"leadToConversionRate"`
	Earnings             int     `json:"earnings"`
	ClicksGrowth         float64 `json:"clicksGrowth"`
}

// TimelinePoint is one day of click volume.
type TimelinePoint struct {
	Date      string `json:"date"`
	DateLabel string `json:"dateLabel"`
	Count     int    `json:"count"`
}

// DistributionEntry is one bucket of a categorical distribution.
type DistributionEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TopReferrer ranks a referral code by click volume, joined with the
// owner's metadata and lead outcomes.
type TopReferrer struct {
	ReferralCode   string  `json:"referralCode"`
	Name           string  `json:"name"`
	Whatsapp       string  `json:"whatsapp,omitempty"`
	Clicks         int     `json:"clicks"`
	Leads          int     `json:"leads"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversionRate"`
}

// FunnelStage is one step of the click-to-conversion funnel. The color
// is cosmetic, carried for the chart layer.
type FunnelStage struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// HourBucket is one hour of the 24-bucket daily heatmap.
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// WeekdayBucket is one day of the Sunday-first weekday heatmap.
type WeekdayBucket struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard is the full aggregation output for one window.
type Dashboard struct {
	Summary                 Summary             `json:"summary"`
	Timeline                []TimelinePoint     `json:"timeline"`
	DeviceDistribution      []DistributionEntry `json:"deviceDistribution"`
	OSDistribution          []DistributionEntry `json:"osDistribution"`
	BrowserDistribution     []DistributionEntry `json:"browserDistribution"`
	CountryDistribution     []DistributionEntry `json:"countryDistribution"`
	ReferrerDistribution    []DistributionEntry `json:"referrerDistribution"`
	UTMSourceDistribution   []DistributionEntry `json:"utmSourceDistribution"`
	UTMMediumDistribution   []DistributionEntry `json:"utmMediumDistribution"`
	UTMCampaignDistribution []DistributionEntry `json:"utmCampaignDistribution"`
	TopReferrers            []TopReferrer       `json:"topReferrers"`
	Funnel                  []FunnelStage       `json:"funnel"`
	HourlyDistribution      []HourBucket        `json:"hourlyDistribution"`
	DayOfWeekDistribution   []WeekdayBucket     `json:"dayOfWeekDistribution"`
}

// round1 rounds to one decimal place, the precision every rate and
// growth figure is reported with.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ratio returns part/total*100 rounded to one decimal, and 0 exactly
// when the denominator is 0.
func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}
