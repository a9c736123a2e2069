package analytics

import (
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"reftrack/internal/hits"
	"reftrack/internal/referrers"
)

// FilterOption is one selectable value of a filter control. Count is
// omitted for the referrer list, where it carries no meaning.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count,omitempty"`
}

// Catalog holds the distinct observed values per filterable dimension.
type Catalog struct {
	Referrers []FilterOption `json:"referrers"`
	Countries []FilterOption `json:"countries"`
	Devices   []FilterOption `json:"devices"`
	Browsers  []FilterOption `json:"browsers"`
	Oses      []FilterOption `json:"oses"`
}

var countryIndex = gountries.New()

// BuildCatalog collects the filter options for the dashboard controls.
// The dimension scans cover ALL hits, not just the selected window, so
// controls stay populated regardless of the period in view.
func BuildCatalog(db *gorm.DB) (Catalog, error) {
	catalog := Catalog{}

	refs, err := referrers.All(db)
	if err != nil {
		return Catalog{}, err
	}
	catalog.Referrers = make([]FilterOption, len(refs))
	for i, ref := range refs {
		catalog.Referrers[i] = FilterOption{Value: ref.ReferralCode, Label: ref.Nome}
	}

	if catalog.Countries, err = dimensionOptions(db, "country", countryLabel); err != nil {
		return Catalog{}, err
	}
	if catalog.Devices, err = dimensionOptions(db, "device_type", deviceLabel); err != nil {
		return Catalog{}, err
	}
	if catalog.Browsers, err = dimensionOptions(db, "browser", nil); err != nil {
		return Catalog{}, err
	}
	if catalog.Oses, err = dimensionOptions(db, "os", nil); err != nil {
		return Catalog{}, err
	}

	return catalog, nil
}

func dimensionOptions(db *gorm.DB, column string, label func(string) string) ([]FilterOption, error) {
	values, err := hits.DistinctCounts(db, column)
	if err != nil {
		return nil, err
	}

	options := make([]FilterOption, len(values))
	for i, vc := range values {
		option := FilterOption{Value: vc.Value, Label: vc.Value, Count: vc.Count}
		if label != nil {
			option.Label = label(vc.Value)
		}
		options[i] = option
	}
	return options, nil
}

// countryLabel resolves an ISO alpha-2 code to the country's common
// name; unresolvable codes fall back to the raw value.
func countryLabel(code string) string {
	country, err := countryIndex.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}

var titleCaser = cases.Title(language.AmericanEnglish)

// deviceLabel title-cases the stored lowercase device type for display.
func deviceLabel(value string) string {
	return titleCaser.String(value)
}
