package analytics

import (
	"sort"
	"time"

	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

// StatsSummary is the headline block of the lead rollup.
type StatsSummary struct {
	TotalLeads     int     `json:"totalLeads"`
	FromReferral   int     `json:"fromReferral"`
	WonLeads       int     `json:"wonLeads"`
	RecentLeads    int     `json:"recentLeads"`
	ConversionRate float64 `json:"conversionRate"`
	TopReferrer    *string `json:"topReferrer"`
}

// StageCount is one pipeline stage with its lead count.
type StageCount struct {
	Stage leads.Stage `json:"stage"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

// LeadReferrer ranks a referral code by lead volume.
type LeadReferrer struct {
	ReferralCode string `json:"referralCode"`
	Name         string `json:"name"`
	Whatsapp     string `json:"whatsapp,omitempty"`
	Count        int    `json:"count"`
}

// Stats is the lead-only pipeline rollup, independent of the click
// pipeline.
type Stats struct {
	Summary           StatsSummary    `json:"summary"`
	StageDistribution []StageCount    `json:"stageDistribution"`
	TopReferrers      []LeadReferrer  `json:"topReferrers"`
	Timeline          []TimelinePoint `json:"timeline"`
}

// ComputeStats reduces all leads into the pipeline rollup: totals,
// per-stage counts in fixed display order, the top 5 referrers by lead
// count, and a 30-day daily creation timeline. Pure function of its
// inputs; now anchors the "recent" and timeline cutoffs.
func ComputeStats(ls []leads.Lead, refs []referrers.Referrer, now time.Time) Stats {
	totalLeads := len(ls)
	recentCutoff := now.AddDate(0, 0, -7)
	timelineCutoff := now.AddDate(0, 0, -30)

	var fromReferral, wonLeads, recentLeads int
	stageCounts := make(map[leads.Stage]int, len(leads.StageOrder))
	codeCounts := make(map[string]int)
	codeOrder := make([]string, 0)
	timelineCounts := make(map[string]int)

	for _, lead := range ls {
		if lead.ReferralCode != nil {
			fromReferral++
			code := *lead.ReferralCode
			if _, seen := codeCounts[code]; !seen {
				codeOrder = append(codeOrder, code)
			}
			codeCounts[code]++
		}
		if lead.Stage == leads.StageComprado {
			wonLeads++
		}
		if !lead.CreatedAt.Before(recentCutoff) {
			recentLeads++
		}
		stageCounts[lead.Stage]++

		if !lead.CreatedAt.Before(timelineCutoff) {
			timelineCounts[lead.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}

	stages := make([]StageCount, len(leads.StageOrder))
	for i, stage := range leads.StageOrder {
		stages[i] = StageCount{Stage: stage, Label: stage.Label(), Count: stageCounts[stage]}
	}

	refMap := referrers.BuildMap(refs)
	top := make([]LeadReferrer, len(codeOrder))
	for i, code := range codeOrder {
		entry := LeadReferrer{
			ReferralCode: code,
			Name:         refMap.DisplayName(code),
			Count:        codeCounts[code],
		}
		if ref, ok := refMap[code]; ok {
			entry.Whatsapp = ref.Whatsapp
		}
		top[i] = entry
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > 5 {
		top = top[:5]
	}

	days := make([]string, 0, len(timelineCounts))
	for day := range timelineCounts {
		days = append(days, day)
	}
	sort.Strings(days)
	timeline := make([]TimelinePoint, len(days))
	for i, day := range days {
		timeline[i] = TimelinePoint{
			Date:      day,
			DateLabel: day[8:10] + "/" + day[5:7],
			Count:     timelineCounts[day],
		}
	}

	summary := StatsSummary{
		TotalLeads:     totalLeads,
		FromReferral:   fromReferral,
		WonLeads:       wonLeads,
		RecentLeads:    recentLeads,
		ConversionRate: ratio(wonLeads, totalLeads),
	}
	if len(top) > 0 {
		summary.TopReferrer = &top[0].Name
	}

	return Stats{
		Summary:           summary,
		StageDistribution: stages,
		TopReferrers:      top,
		Timeline:          timeline,
	}
}
