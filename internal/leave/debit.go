package leave

import (
	"time"

	"leavedesk/internal/cacheview"

	"github.com/shopspring/decimal"
)

var (
	zero = decimal.Zero
	half = decimal.RequireFromString("0.5")
	one  = decimal.NewFromInt(1)
)

// CalculateDebit walks the requested span and totals the day-units to
// charge. Sundays and holidays inside the span cost nothing unless the
// policy is a sandwich policy. A boundary carrying a half-day marker always
// costs exactly 0.5, calendar regardless: the absence was explicitly
// declared for that half.
func CalculateDebit(
	start time.Time,
	end *time.Time,
	startAbsentType string,
	endAbsentType *string,
	sandwich bool,
	holidays []time.Time,
) decimal.Decimal {
	if end == nil {
		if startAbsentType != cacheview.FullDay {
			return half
		}
		if !sandwich && isNonWorking(start, holidays) {
			return zero
		}
		return one
	}

	total := zero
	for d := dateOnly(start); !d.After(dateOnly(*end)); d = d.AddDate(0, 0, 1) {
		weight := one
		switch {
		case d.Equal(dateOnly(start)) && startAbsentType != cacheview.FullDay:
			weight = half
		case d.Equal(dateOnly(*end)) && endAbsentType != nil && *endAbsentType != cacheview.FullDay:
			weight = half
		default:
			if !sandwich && isNonWorking(d, holidays) {
				weight = zero
			}
		}
		total = total.Add(weight)
	}
	return total
}

func isNonWorking(d time.Time, holidays []time.Time) bool {
	if d.Weekday() == time.Sunday {
		return true
	}
	for _, h := range holidays {
		if sameDate(d, h) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
