package hits_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reftrack/internal/hits"
	"reftrack/internal/testsupport"
	"reftrack/internal/timeframe"
)

func windowAround(start, end time.Time) timeframe.Window {
	return timeframe.Window{Start: start, End: end}
}

func TestInWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	inside1 := testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(base))
	inside2 := testsupport.CreateTestHit(t, db, "maria", testsupport.WithHitTime(base.Add(time.Hour)))
	testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(base.AddDate(0, 0, -10)))

	w := windowAround(base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))

	t.Run("window restricts and orders ascending", func(t *testing.T) {
		results, err := hits.InWindow(db, hits.Filters{Window: w})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, inside1.ID, results[0].ID)
		assert.Equal(t, inside2.ID, results[1].ID)
	})

	t.Run("referral code filter", func(t *testing.T) {
		results, err := hits.InWindow(db, hits.Filters{Window: w, ReferralCode: "maria"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, inside2.ID, results[0].ID)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		exact := windowAround(base, base.Add(time.Hour))
		results, err := hits.InWindow(db, hits.Filters{Window: exact})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestFilterPredicates(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	w := windowAround(base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))

	mobile := testsupport.CreateTestHit(t, db, "joao",
		testsupport.WithHitTime(base),
		testsupport.WithHitDevice("mobile", "Android", "Chrome"),
		testsupport.WithHitCountry("BR"),
		testsupport.WithHitCity("São Paulo", "SP"),
	)
	testsupport.CreateTestHit(t, db, "joao",
		testsupport.WithHitTime(base),
		testsupport.WithHitDevice("desktop", "Windows", "Firefox"),
		testsupport.WithHitCountry("US"),
		testsupport.WithHitCity("New York", "NY"),
	)

	t.Run("filters are conjunctive", func(t *testing.T) {
		results, err := hits.InWindow(db, hits.Filters{
			Window:     w,
			Country:    "BR",
			DeviceType: "mobile",
			Browser:    "Chrome",
			OS:         "Android",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, mobile.ID, results[0].ID)
	})

	t.Run("mismatched conjunction yields nothing", func(t *testing.T) {
		results, err := hits.InWindow(db, hits.Filters{
			Window:     w,
			Country:    "BR",
			DeviceType: "desktop",
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("search is case-insensitive across text fields", func(t *testing.T) {
		results, err := hits.InWindow(db, hits.Filters{Window: w, Search: "são pa"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, mobile.ID, results[0].ID)

		results, err = hits.InWindow(db, hits.Filters{Window: w, Search: "JOAO"})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestCountPrevious(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	start := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	w := windowAround(start, end)

	// Two hits inside the previous window, one exactly at the current
	// window's start (must not be counted twice), one before both.
	testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(start.AddDate(0, 0, -3)))
	testsupport.CreateTestHit(t, db, "maria", testsupport.WithHitTime(start.AddDate(0, 0, -1)))
	testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(start))
	testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(start.AddDate(0, 0, -20)))

	t.Run("counts the preceding equal-length window", func(t *testing.T) {
		count, err := hits.CountPrevious(db, w, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("carries only the referral code filter", func(t *testing.T) {
		count, err := hits.CountPrevious(db, w, "joao")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestList(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	w := windowAround(base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	for i := 0; i < 7; i++ {
		testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitTime(base.Add(time.Duration(i)*time.Hour)))
	}

	t.Run("paginates with the filtered total", func(t *testing.T) {
		result, err := hits.List(db, hits.ListParams{
			Filters: hits.Filters{Window: w},
			Page:    2,
			Limit:   3,
		})
		require.NoError(t, err)
		assert.Len(t, result.Hits, 3)
		assert.Equal(t, int64(7), result.Total)
	})

	t.Run("default sort is createdAt descending", func(t *testing.T) {
		result, err := hits.List(db, hits.ListParams{
			Filters: hits.Filters{Window: w},
			Page:    1,
			Limit:   2,
		})
		require.NoError(t, err)
		require.Len(t, result.Hits, 2)
		assert.True(t, result.Hits[0].CreatedAt.After(result.Hits[1].CreatedAt))
	})

	t.Run("unknown sort field falls back instead of failing", func(t *testing.T) {
		result, err := hits.List(db, hits.ListParams{
			Filters: hits.Filters{Window: w},
			Page:    1,
			Limit:   2,
			SortBy:  "created_at; DROP TABLE hits",
		})
		require.NoError(t, err)
		assert.Len(t, result.Hits, 2)
	})

	t.Run("asc order is honored", func(t *testing.T) {
		result, err := hits.List(db, hits.ListParams{
			Filters:   hits.Filters{Window: w},
			Page:      1,
			Limit:     2,
			SortBy:    "createdAt",
			SortOrder: "asc",
		})
		require.NoError(t, err)
		require.Len(t, result.Hits, 2)
		assert.True(t, result.Hits[0].CreatedAt.Before(result.Hits[1].CreatedAt))
	})
}

func TestDistinctCounts(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	for i := 0; i < 3; i++ {
		testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitDevice("mobile", "Android", "Chrome"))
	}
	testsupport.CreateTestHit(t, db, "joao", testsupport.WithHitDevice("desktop", "Windows", "Firefox"))
	testsupport.CreateTestHit(t, db, "joao") // null dimensions

	t.Run("groups non-null values most frequent first", func(t *testing.T) {
		values, err := hits.DistinctCounts(db, "device_type")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, hits.ValueCount{Value: "mobile", Count: 3}, values[0])
		assert.Equal(t, hits.ValueCount{Value: "desktop", Count: 1}, values[1])
	})

	t.Run("rejects columns outside the whitelist", func(t *testing.T) {
		_, err := hits.DistinctCounts(db, "ip")
		require.Error(t, err)
	})
}
