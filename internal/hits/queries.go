package hits

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"reftrack/internal/timeframe"
)

// Filters is the conjunctive predicate applied when fetching hits: the
// time window is always present, the equality filters apply only when
// non-empty, and Search does case-insensitive substring matching across
// ip, city, region and referral code.
type Filters struct {
	Window       timeframe.Window
	ReferralCode string
	Country      string
	DeviceType   string
	Browser      string
	OS           string
	Search       string
}

// sortColumns whitelists the sortable fields for listings, mapping the
// JSON field names clients send to the underlying columns. Anything not
// listed here never reaches the query.
var sortColumns = map[string]string{
	"id":           "id",
	"createdAt":    "created_at",
	"ip":           "ip",
	"userAgent":    "user_agent",
	"referralCode": "referral_code",
	"referrerUrl":  "referrer_url",
	"utmSource":    "utm_source",
	"utmMedium":    "utm_medium",
	"utmCampaign":  "utm_campaign",
	"deviceType":   "device_type",
	"os":           "os",
	"browser":      "browser",
	"screenWidth":  "screen_width",
	"screenHeight": "screen_height",
	"country":      "country",
	"city":         "city",
	"region":       "region",
	"language":     "language",
	"timezone":     "timezone",
}

// catalogColumns whitelists the dimensions exposed by DistinctCounts.
var catalogColumns = map[string]bool{
	"country":     true,
	"device_type": true,
	"browser":     true,
	"os":          true,
}

// ValueCount is one distinct observed value with its occurrence count.
type ValueCount struct {
	Value string
	Count int64
}

func (f Filters) apply(query *gorm.DB) *gorm.DB {
	query = query.Where("created_at BETWEEN ? AND ?", f.Window.Start, f.Window.End)

	if f.ReferralCode != "" {
		query = query.Where("referral_code = ?", f.ReferralCode)
	}
	if f.Country != "" {
		query = query.Where("country = ?", f.Country)
	}
	if f.DeviceType != "" {
		query = query.Where("device_type = ?", f.DeviceType)
	}
	if f.Browser != "" {
		query = query.Where("browser = ?", f.Browser)
	}
	if f.OS != "" {
		query = query.Where("os = ?", f.OS)
	}

	if f.Search != "" {
		// SQLite LIKE is case-insensitive for ASCII already; lowering both
		// sides keeps the behavior explicit.
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(ip) LIKE ? OR LOWER(city) LIKE ? OR LOWER(region) LIKE ? OR LOWER(referral_code) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	return query
}

// InWindow retrieves all hits matching the filters, oldest first.
func InWindow(db *gorm.DB, f Filters) ([]Hit, error) {
	var results []Hit
	err := f.apply(db.Model(&Hit{})).Order("created_at ASC").Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching hits in window: %w", err)
	}
	return results, nil
}

// CountPrevious counts hits in the comparison window preceding the active
// one. The upper bound is exclusive so no hit is counted in both windows.
// Only the referral-code filter carries over; the comparison is about
// overall click volume for the same referrer scope.
func CountPrevious(db *gorm.DB, w timeframe.Window, referralCode string) (int64, error) {
	prev := w.Previous()
	query := db.Model(&Hit{}).
		Where("created_at >= ? AND created_at < ?", prev.Start, prev.End)
	if referralCode != "" {
		query = query.Where("referral_code = ?", referralCode)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting previous-window hits: %w", err)
	}
	return count, nil
}

// ListParams selects one page of hits for tabular display.
type ListParams struct {
	Filters
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ListResult is a page of hits plus the filtered total independent of
// pagination.
type ListResult struct {
	Hits  []Hit
	Total int64
}

// List retrieves a sorted, paginated page of hits. Unknown sort fields
// fall back to createdAt and anything but "asc" sorts descending; both
// are documented fallbacks, not errors, so stale dashboard links keep
// working.
func List(db *gorm.DB, p ListParams) (ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 50
	}

	column, ok := sortColumns[p.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		direction = "ASC"
	}

	query := p.apply(db.Model(&Hit{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ListResult{}, fmt.Errorf("error counting hits: %w", err)
	}

	var page []Hit
	err := query.
		Order(column + " " + direction).
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&page).Error
	if err != nil {
		return ListResult{}, fmt.Errorf("error fetching hits page: %w", err)
	}

	return ListResult{Hits: page, Total: total}, nil
}

// DistinctCounts returns the distinct non-null values of a catalog
// dimension with occurrence counts across ALL hits, most frequent first.
// The scan is deliberately not window-restricted so filter controls stay
// populated regardless of the selected period.
func DistinctCounts(db *gorm.DB, column string) ([]ValueCount, error) {
	if !catalogColumns[column] {
		return nil, fmt.Errorf("unsupported catalog dimension: %s", column)
	}

	var results []ValueCount
	query := fmt.Sprintf(`
    SELECT %s as value, COUNT(*) as count
    FROM hits
    WHERE %s IS NOT NULL
    GROUP BY %s
    ORDER BY count DESC
    `, column, column, column)

	if err := db.Raw(query).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching distinct %s values: %w", column, err)
	}
	return results, nil
}
