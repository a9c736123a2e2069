package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

func makeLead(id string, code *string, stage leads.Stage, at time.Time) leads.Lead {
	return leads.Lead{ID: id, Nome: "Lead " + id, Whatsapp: "11988887777", ReferralCode: code, Stage: stage, CreatedAt: at}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	refs := []referrers.Referrer{
		{ReferralCode: "joao", Nome: "João Silva", Whatsapp: "11999999999"},
	}

	ls := []leads.Lead{
		makeLead("l1", strPtr("joao"), leads.StageComprado, now.AddDate(0, 0, -1)),
		makeLead("l2", strPtr("joao"), leads.StageNaBase, now.AddDate(0, 0, -1)),
		makeLead("l3", strPtr("maria"), leads.StageEmContato, now.AddDate(0, 0, -10)),
		makeLead("l4", nil, leads.StageRejeitado, now.AddDate(0, 0, -40)),
	}

	stats := ComputeStats(ls, refs, now)

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, 4, stats.Summary.TotalLeads)
		assert.Equal(t, 3, stats.Summary.FromReferral)
		assert.Equal(t, 1, stats.Summary.WonLeads)
		assert.Equal(t, 2, stats.Summary.RecentLeads)
		assert.Equal(t, 25.0, stats.Summary.ConversionRate)
		require.NotNil(t, stats.Summary.TopReferrer)
		assert.Equal(t, "João Silva", *stats.Summary.TopReferrer)
	})

	t.Run("stage distribution keeps fixed order and zero buckets", func(t *testing.T) {
		require.Len(t, stats.StageDistribution, 4)
		assert.Equal(t, StageCount{Stage: leads.StageNaBase, Label: "Na Base", Count: 1}, stats.StageDistribution[0])
		assert.Equal(t, StageCount{Stage: leads.StageEmContato, Label: "Em Contato", Count: 1}, stats.StageDistribution[1])
		assert.Equal(t, StageCount{Stage: leads.StageComprado, Label: "Comprado", Count: 1}, stats.StageDistribution[2])
		assert.Equal(t, StageCount{Stage: leads.StageRejeitado, Label: "Rejeitado", Count: 1}, stats.StageDistribution[3])
	})

	t.Run("top referrers rank by lead count with dangling fallback", func(t *testing.T) {
		require.Len(t, stats.TopReferrers, 2)
		assert.Equal(t, LeadReferrer{ReferralCode: "joao", Name: "João Silva", Whatsapp: "11999999999", Count: 2}, stats.TopReferrers[0])
		assert.Equal(t, LeadReferrer{ReferralCode: "maria", Name: "maria", Count: 1}, stats.TopReferrers[1])
	})

	t.Run("timeline covers the last 30 days only", func(t *testing.T) {
		require.Len(t, stats.Timeline, 2)
		assert.Equal(t, TimelinePoint{Date: "2025-06-05", DateLabel: "05/06", Count: 1}, stats.Timeline[0])
		assert.Equal(t, TimelinePoint{Date: "2025-06-14", DateLabel: "14/06", Count: 2}, stats.Timeline[1])
	})
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 0.0, stats.Summary.ConversionRate)
	assert.Nil(t, stats.Summary.TopReferrer)
	assert.Empty(t, stats.TopReferrers)
	assert.Empty(t, stats.Timeline)
	require.Len(t, stats.StageDistribution, 4)
	for _, stage := range stats.StageDistribution {
		assert.Zero(t, stage.Count)
	}
}

func TestComputeStatsTopFive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var ls []leads.Lead
	for i := 0; i < 8; i++ {
		code := fmt.Sprintf("ref-%d", i)
		// Descending volume: ref-0 gets the most leads.
		for j := 0; j <= 8-i; j++ {
			ls = append(ls, makeLead(fmt.Sprintf("l-%d-%d", i, j), &code, leads.StageNaBase, now))
		}
	}

	stats := ComputeStats(ls, nil, now)

	require.Len(t, stats.TopReferrers, 5)
	assert.Equal(t, "ref-0", stats.TopReferrers[0].ReferralCode)
	assert.Equal(t, "ref-4", stats.TopReferrers[4].ReferralCode)
}
