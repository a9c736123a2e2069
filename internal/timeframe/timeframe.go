// Package timeframe resolves dashboard period tokens into concrete UTC
// time windows.
//
// A window is the inclusive [Start, End] range a query is restricted to.
// Every comparison and bucketing decision downstream (daily timeline,
// hourly and weekday heatmaps) uses the same UTC calendar; there is no
// per-viewer timezone conversion.
package timeframe

import "time"

// Period tokens accepted by the dashboard endpoints.
const (
	PeriodToday  = "today"
	Period7Days  = "7days"
	Period30Days = "30days"
	Period90Days = "90days"
	PeriodCustom = "custom"
)

// DateLayout is the wire format for custom period bounds.
const DateLayout = "2006-01-02"

// Clock abstracts the current instant so window resolution is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the system time in UTC.
type SystemClock struct{}

// Now returns the current UTC instant.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Window represents an inclusive [Start, End] instant range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Previous returns the equal-length window immediately preceding this
// one: [Start-(End-Start), Start). The upper bound is exclusive so the two
// windows never overlap.
func (w Window) Previous() Window {
	return Window{
		Start: w.Start.Add(-w.Duration()),
		End:   w.Start,
	}
}

// Resolve turns a period token plus optional explicit bounds into a
// window. startDate and endDate are only consulted when period is
// "custom"; a missing or unparsable bound falls back to the corresponding
// bound of the 30-day default. Any unrecognized token resolves to the
// 30-day window. This silent fallback is deliberate: filter controls may
// send arbitrary tokens and the dashboard should still render.
func Resolve(period, startDate, endDate string, clock Clock) Window {
	now := clock.Now()

	switch period {
	case PeriodToday:
		return Window{Start: startOfDay(now), End: endOfDay(now)}
	case Period7Days:
		return lastNDays(now, 7)
	case Period90Days:
		return lastNDays(now, 90)
	case PeriodCustom:
		w := lastNDays(now, 30)
		if start, err := time.ParseInLocation(DateLayout, startDate, time.UTC); err == nil {
			w.Start = startOfDay(start)
		}
		if end, err := time.ParseInLocation(DateLayout, endDate, time.UTC); err == nil {
			w.End = endOfDay(end)
		}
		return w
	default:
		// Period30Days and anything unrecognized.
		return lastNDays(now, 30)
	}
}

func lastNDays(now time.Time, n int) Window {
	return Window{
		Start: startOfDay(now.AddDate(0, 0, -n)),
		End:   endOfDay(now),
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}
