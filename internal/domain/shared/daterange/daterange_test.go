package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) DateRange {
	t.Helper()
	dr, err := New(start, end)
	require.NoError(t, err)
	return dr
}

func TestNewRejectsBadOrdering(t *testing.T) {
	cases := map[string]struct {
		start, end time.Time
	}{
		"end before start": {date(2026, 3, 10), date(2026, 3, 5)},
		"end equals start": {date(2026, 3, 10), date(2026, 3, 10)},
		"zero start":       {time.Time{}, date(2026, 3, 10)},
		"zero end":         {date(2026, 3, 10), time.Time{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.start, tc.end)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestNewTruncatesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	dr, err := New(
		time.Date(2026, 3, 10, 14, 30, 0, 0, loc),
		time.Date(2026, 3, 12, 9, 0, 0, 0, loc),
	)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 10), dr.Start)
	assert.Equal(t, date(2026, 3, 12), dr.End)
}

func TestNights(t *testing.T) {
	dr := mustRange(t, date(2026, 5, 1), date(2026, 5, 3))
	assert.Equal(t, 2, dr.Nights())

	single := mustRange(t, date(2026, 5, 1), date(2026, 5, 2))
	assert.Equal(t, 1, single.Nights())
}

func TestOverlapsInclusive(t *testing.T) {
	base := mustRange(t, date(2026, 6, 10), date(2026, 6, 15))

	cases := map[string]struct {
		other   DateRange
		overlap bool
	}{
		"identical":               {base, true},
		"contained":               {mustRange(t, date(2026, 6, 11), date(2026, 6, 14)), true},
		"shares start boundary":   {mustRange(t, date(2026, 6, 5), date(2026, 6, 10)), true},
		"shares end boundary":     {mustRange(t, date(2026, 6, 15), date(2026, 6, 20)), true},
		"strictly before":         {mustRange(t, date(2026, 6, 1), date(2026, 6, 9)), false},
		"strictly after":          {mustRange(t, date(2026, 6, 16), date(2026, 6, 20)), false},
		"spans the whole range":   {mustRange(t, date(2026, 6, 1), date(2026, 6, 30)), true},
		"one day before boundary": {mustRange(t, date(2026, 6, 8), date(2026, 6, 9)), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, base.OverlapsInclusive(tc.other))
			assert.Equal(t, tc.overlap, tc.other.OverlapsInclusive(base))
		})
	}
}

func TestContainsDateIsHalfOpen(t *testing.T) {
	dr := mustRange(t, date(2026, 7, 1), date(2026, 7, 4))

	assert.True(t, dr.ContainsDate(date(2026, 7, 1)))
	assert.True(t, dr.ContainsDate(date(2026, 7, 3)))
	assert.False(t, dr.ContainsDate(date(2026, 7, 4)), "end date is exclusive for nightly lookups")
	assert.False(t, dr.ContainsDate(date(2026, 6, 30)))

	assert.True(t, dr.ContainsDateInclusive(date(2026, 7, 4)))
}

func TestIntersectsWithOpenWindowBounds(t *testing.T) {
	dr := mustRange(t, date(2026, 8, 10), date(2026, 8, 20))

	assert.True(t, dr.Intersects(time.Time{}, time.Time{}))
	assert.True(t, dr.Intersects(date(2026, 8, 20), time.Time{}))
	assert.True(t, dr.Intersects(time.Time{}, date(2026, 8, 10)))
	assert.False(t, dr.Intersects(date(2026, 8, 21), time.Time{}))
	assert.False(t, dr.Intersects(time.Time{}, date(2026, 8, 9)))
	assert.True(t, dr.Intersects(date(2026, 8, 1), date(2026, 8, 31)))
}
