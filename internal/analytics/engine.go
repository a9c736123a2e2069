package analytics

import (
	"fmt"
	"sort"

	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

// The grouping dimensions are a closed set of typed accessors rather
// than runtime field names, so an unsupported dimension is a compile
// error instead of an empty chart.
var (
	byDeviceType  = func(h hits.Hit) *string { return h.DeviceType }
	byOS          = func(h hits.Hit) *string { return h.OS }
	byBrowser     = func(h hits.Hit) *string { return h.Browser }
	byCountry     = func(h hits.Hit) *string { return h.Country }
	byReferrerURL = func(h hits.Hit) *string { return h.ReferrerURL }
	byUTMSource   = func(h hits.Hit) *string { return h.UTMSource }
	byUTMMedium   = func(h hits.Hit) *string { return h.UTMMedium }
	byUTMCampaign = func(h hits.Hit) *string { return h.UTMCampaign }
	byReferral    = func(h hits.Hit) *string { return h.ReferralCode }
)

// weekdayLabels is Sunday-first, matching time.Weekday numbering.
var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// funnelColors are the fixed display colors of the four funnel stages.
var funnelColors = [4]string{"#c084fc", "#a855f7", "#38bdf8", "#34d399"}

// Compute reduces a snapshot into the full dashboard. It is a pure
// function: nothing is mutated and no I/O happens here, so no locking is
// needed and the result is fully determined by its input.
func Compute(s Snapshot) Dashboard {
	totalClicks := len(s.Hits)
	totalLeads := len(s.Leads)

	uniqueIPs := make(map[string]struct{}, totalClicks)
	for _, hit := range s.Hits {
		if hit.IP != nil {
			uniqueIPs[*hit.IP] = struct{}{}
		}
	}

	var convertedLeads, inContact int
	for _, lead := range s.Leads {
		switch lead.Stage {
		case leads.StageComprado:
			convertedLeads++
		case leads.StageEmContato:
			inContact++
		}
	}

	return Dashboard{
		Summary: Summary{
			TotalClicks:          totalClicks,
			UniqueClicks:         len(uniqueIPs),
			TotalLeads:           totalLeads,
			ConvertedLeads:       convertedLeads,
			ClickToLeadRate:      ratio(totalLeads, totalClicks),
			LeadToConversionRate: ratio(convertedLeads, totalLeads),
			Earnings:             convertedLeads * conversionValue,
			ClicksGrowth:         growth(totalClicks, s.PreviousClicks),
		},
		Timeline:                timeline(s.Hits),
		DeviceDistribution:      groupBy(s.Hits, byDeviceType),
		OSDistribution:          groupBy(s.Hits, byOS),
		BrowserDistribution:     groupBy(s.Hits, byBrowser),
		CountryDistribution:     groupBy(s.Hits, byCountry),
		ReferrerDistribution:    groupBy(s.Hits, byReferrerURL),
		UTMSourceDistribution:   groupBy(s.Hits, byUTMSource),
		UTMMediumDistribution:   groupBy(s.Hits, byUTMMedium),
		UTMCampaignDistribution: groupBy(s.Hits, byUTMCampaign),
		TopReferrers:            topReferrers(s.Hits, s.Leads, s.Referrers),
		Funnel: []FunnelStage{
			{Stage: "Cliques", Value: totalClicks, Color: funnelColors[0]},
			{Stage: "Leads", Value: totalLeads, Color: funnelColors[1]},
			{Stage: "Em Contato", Value: inContact, Color: funnelColors[2]},
			{Stage: "Convertidos", Value: convertedLeads, Color: funnelColors[3]},
		},
		HourlyDistribution:    hourlyDistribution(s.Hits),
		DayOfWeekDistribution: dayOfWeekDistribution(s.Hits),
	}
}

// growth is the percentage change in click volume against the previous
// window. With no previous clicks there is no base for a percentage, so
// any current traffic reports as 100 and none as 0.
func growth(totalClicks int, previousClicks int64) float64 {
	if previousClicks == 0 {
		if totalClicks > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(int64(totalClicks)-previousClicks) / float64(previousClicks) * 100)
}

// timeline groups hits by UTC calendar day, ascending.
func timeline(hs []hits.Hit) []TimelinePoint {
	counts := make(map[string]int)
	for _, hit := range hs {
		counts[hit.CreatedAt.UTC().Format("2006-01-02")]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]TimelinePoint, len(days))
	for i, day := range days {
		points[i] = TimelinePoint{
			Date:      day,
			DateLabel: day[8:10] + "/" + day[5:7],
			Count:     counts[day],
		}
	}
	return points
}

// groupBy counts hits per value of one dimension, mapping missing values
// to the Unknown sentinel, sorted by descending count. Ties keep
// first-seen order.
func groupBy(hs []hits.Hit, accessor func(hits.Hit) *string) []DistributionEntry {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, hit := range hs {
		value := UnknownValue
		if v := accessor(hit); v != nil && *v != "" {
			value = *v
		}
		if _, seen := counts[value]; !seen {
			order = append(order, value)
		}
		counts[value]++
	}

	entries := make([]DistributionEntry, len(order))
	for i, value := range order {
		entries[i] = DistributionEntry{Value: value, Count: counts[value]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// topReferrers ranks referral codes by click volume (top 10) and joins
// each with the owning referrer and its lead outcomes. A dangling code
// is displayed as the raw code with no whatsapp, per the weak-reference
// contract.
func topReferrers(hs []hits.Hit, ls []leads.Lead, refs []referrers.Referrer) []TopReferrer {
	ranked := groupBy(hs, byReferral)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	refMap := referrers.BuildMap(refs)

	leadsByCode := make(map[string][]leads.Lead)
	for _, lead := range ls {
		if lead.ReferralCode == nil {
			continue
		}
		leadsByCode[*lead.ReferralCode] = append(leadsByCode[*lead.ReferralCode], lead)
	}

	results := make([]TopReferrer, len(ranked))
	for i, entry := range ranked {
		referrerLeads := leadsByCode[entry.Value]
		conversions := 0
		for _, lead := range referrerLeads {
			if lead.Stage == leads.StageComprado {
				conversions++
			}
		}

		result := TopReferrer{
			ReferralCode:   entry.Value,
			Name:           refMap.DisplayName(entry.Value),
			Clicks:         entry.Count,
			Leads:          len(referrerLeads),
			Conversions:    conversions,
			ConversionRate: ratio(conversions, len(referrerLeads)),
		}
		if ref, ok := refMap[entry.Value]; ok {
			result.Whatsapp = ref.Whatsapp
		}
		results[i] = result
	}
	return results
}

// hourlyDistribution counts hits per UTC hour of day, fixed 0..23 order.
func hourlyDistribution(hs []hits.Hit) []HourBucket {
	buckets := make([]HourBucket, 24)
	for i := range buckets {
		buckets[i] = HourBucket{Hour: i, Label: fmt.Sprintf("%02d:00", i)}
	}
	for _, hit := range hs {
		buckets[hit.CreatedAt.UTC().Hour()].Count++
	}
	return buckets
}

// dayOfWeekDistribution counts hits per UTC weekday, fixed Sunday-first
// order.
func dayOfWeekDistribution(hs []hits.Hit) []WeekdayBucket {
	buckets := make([]WeekdayBucket, 7)
	for i := range buckets {
		buckets[i] = WeekdayBucket{Day: i, Label: weekdayLabels[i]}
	}
	for _, hit := range hs {
		buckets[int(hit.CreatedAt.UTC().Weekday())].Count++
	}
	return buckets
}
