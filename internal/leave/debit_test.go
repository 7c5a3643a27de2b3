package leave

import (
	"testing"
	"time"

	"leavedesk/internal/cacheview"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func dayptr(t *testing.T, s string) *time.Time {
	d := day(t, s)
	return &d
}

// 2026-08-03 is a Monday; 2026-08-09 is a Sunday.
func TestCalculateDebit(t *testing.T) {
	wednesday := []time.Time{day(t, "2026-08-05")}

	tests := []struct {
		name       string
		start      string
		end        *string
		startType  string
		endType    *string
		sandwich   bool
		holidays   []time.Time
		want       string
	}{
		{
			name: "single full working day", start: "2026-08-03",
			startType: cacheview.FullDay, want: "1",
		},
		{
			name: "single first half", start: "2026-08-03",
			startType: cacheview.FirstHalf, want: "0.5",
		},
		{
			name: "single full day on sunday", start: "2026-08-09",
			startType: cacheview.FullDay, want: "0",
		},
		{
			name: "half day marker wins over sunday", start: "2026-08-09",
			startType: cacheview.SecondHalf, want: "0.5",
		},
		{
			name: "single full day on holiday", start: "2026-08-05",
			startType: cacheview.FullDay, holidays: wednesday, want: "0",
		},
		{
			name: "sandwich charges sunday", start: "2026-08-09",
			startType: cacheview.FullDay, sandwich: true, want: "1",
		},
		{
			name: "work week", start: "2026-08-03", end: strp("2026-08-07"),
			startType: cacheview.FullDay, endType: strp(cacheview.FullDay),
			want: "5",
		},
		{
			name: "work week minus holiday", start: "2026-08-03", end: strp("2026-08-07"),
			startType: cacheview.FullDay, endType: strp(cacheview.FullDay),
			holidays: wednesday, want: "4",
		},
		{
			name: "span over sunday excludes it", start: "2026-08-07", end: strp("2026-08-10"),
			startType: cacheview.FullDay, endType: strp(cacheview.FullDay),
			want: "3",
		},
		{
			name: "sandwich span charges sunday", start: "2026-08-07", end: strp("2026-08-10"),
			startType: cacheview.FullDay, endType: strp(cacheview.FullDay),
			sandwich: true, want: "4",
		},
		{
			name: "half day boundaries", start: "2026-08-03", end: strp("2026-08-05"),
			startType: cacheview.SecondHalf, endType: strp(cacheview.FirstHalf),
			want: "2",
		},
		{
			name: "half boundary on sunday still charges half",
			start: "2026-08-09", end: strp("2026-08-10"),
			startType: cacheview.FirstHalf, endType: strp(cacheview.FullDay),
			want: "1.5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var end *time.Time
			if tc.end != nil {
				end = dayptr(t, *tc.end)
			}
			got := CalculateDebit(day(t, tc.start), end, tc.startType, tc.endType, tc.sandwich, tc.holidays)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"want %s got %s", tc.want, got)
		})
	}
}

func strp(s string) *string { return &s }
