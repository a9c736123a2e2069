package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reftrack/internal/hits"
	"reftrack/internal/testsupport"
	"reftrack/internal/timeframe"
)

func TestListClicks(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestReferrer(t, db, "joao-silva", "João Silva")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		testsupport.CreateTestHit(t, db, "joao-silva",
			testsupport.WithHitTime(base.Add(time.Duration(i)*time.Minute)),
			testsupport.WithHitIP(fmt.Sprintf("203.0.113.%d", i%250)),
		)
	}

	window := timeframe.Window{
		Start: base.AddDate(0, 0, -1),
		End:   base.AddDate(0, 0, 1),
	}

	t.Run("pages through the filtered set", func(t *testing.T) {
		page, err := ListClicks(db, hits.ListParams{
			Filters: hits.Filters{Window: window},
			Page:    3,
			Limit:   50,
		})
		require.NoError(t, err)

		assert.Len(t, page.Data, 20)
		assert.Equal(t, int64(120), page.Pagination.Total)
		assert.Equal(t, 3, page.Pagination.TotalPages)
		assert.Equal(t, 3, page.Pagination.Page)
		assert.Equal(t, 50, page.Pagination.Limit)
	})

	t.Run("joins referrer name and masks the IP", func(t *testing.T) {
		page, err := ListClicks(db, hits.ListParams{
			Filters: hits.Filters{Window: window},
			Page:    1,
			Limit:   1,
		})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)

		row := page.Data[0]
		require.NotNil(t, row.ReferrerName)
		assert.Equal(t, "João Silva", *row.ReferrerName)
		require.NotNil(t, row.MaskedIP)
		assert.Equal(t, "203.0.xxx.xxx", *row.MaskedIP)
		// The raw IP stays available on the row.
		require.NotNil(t, row.IP)
		assert.NotEqual(t, *row.MaskedIP, *row.IP)
	})

	t.Run("page beyond the end is empty but keeps the total", func(t *testing.T) {
		page, err := ListClicks(db, hits.ListParams{
			Filters: hits.Filters{Window: window},
			Page:    9,
			Limit:   50,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, int64(120), page.Pagination.Total)
	})

	t.Run("defaults kick in for zero page and limit", func(t *testing.T) {
		page, err := ListClicks(db, hits.ListParams{
			Filters: hits.Filters{Window: window},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 50, page.Pagination.Limit)
	})
}

func TestMaskIP(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"ipv4", strPtr("203.0.113.42"), strPtr("203.0.xxx.xxx")},
		{"ipv6 passes through", strPtr("2001:db8::1"), strPtr("2001:db8::1")},
		{"garbage passes through", strPtr("localhost"), strPtr("localhost")},
		{"nil stays nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskIP(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
