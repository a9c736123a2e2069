package analytics

import (
	"math"
	"regexp"

	"gorm.io/gorm"

	"reftrack/internal/hits"
	"reftrack/internal/referrers"
)

// ipv4Pattern matches the dotted-quad shape the privacy mask applies to.
// Anything else (IPv6, hostnames, garbage) passes through untouched.
var ipv4Pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)$`)

// ClickRow is one hit prepared for tabular display: the raw hit joined
// with the referrer's display name and a privacy-masked IP.
type ClickRow struct {
	hits.Hit
	ReferrerName *string `json:"referrerName"`
	MaskedIP     *string `json:"maskedIp"`
}

// Pagination describes the page of a click listing. Total reflects the
// filtered count independent of the page requested.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ClickPage is one page of the click listing.
type ClickPage struct {
	Data       []ClickRow `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListClicks fetches a page of hits and joins each row with referrer
// metadata. Sorting and filtering are delegated to the store query; the
// join and masking happen here because they are display concerns.
func ListClicks(db *gorm.DB, params hits.ListParams) (ClickPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 50
	}

	result, err := hits.List(db, params)
	if err != nil {
		return ClickPage{}, err
	}

	refs, err := referrers.All(db)
	if err != nil {
		return ClickPage{}, err
	}
	refMap := referrers.BuildMap(refs)

	rows := make([]ClickRow, len(result.Hits))
	for i, hit := range result.Hits {
		row := ClickRow{Hit: hit, MaskedIP: MaskIP(hit.IP)}
		if hit.ReferralCode != nil {
			name := refMap.DisplayName(*hit.ReferralCode)
			row.ReferrerName = &name
		}
		rows[i] = row
	}

	return ClickPage{
		Data: rows,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      result.Total,
			TotalPages: int(math.Ceil(float64(result.Total) / float64(params.Limit))),
		},
	}, nil
}

// MaskIP hides the last two octets of an IPv4-shaped address for
// privacy: "203.0.113.42" becomes "203.0.xxx.xxx". A nil IP stays nil
// and non-IPv4 shapes pass through unmasked.
func MaskIP(ip *string) *string {
	if ip == nil {
		return nil
	}
	masked := ipv4Pattern.ReplaceAllString(*ip, "$1.$2.xxx.xxx")
	return &masked
}
