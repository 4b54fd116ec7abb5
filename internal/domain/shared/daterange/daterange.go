package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
)

// DateRange represents a date interval [Start, End). Overlap checks on the
// write side treat both bounds as inclusive (see OverlapsInclusive), while
// per-night lookups treat End as exclusive (ContainsDate). The asymmetry is
// intentional and load-bearing: do not unify the two without a product decision.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole nights covered by the range, rounding partial days up.
func (dr DateRange) Nights() int {
	hours := dr.End.Sub(dr.Start).Hours()
	nights := int(hours / 24)
	if float64(nights*24) < hours {
		nights++
	}
	return nights
}

// OverlapsInclusive reports whether the two ranges share any date when both
// bounds of both ranges are counted. Ranges touching at a boundary overlap.
func (dr DateRange) OverlapsInclusive(other DateRange) bool {
	return !dr.Start.After(other.End) && !dr.End.Before(other.Start)
}

// ContainsDate reports whether t falls inside [Start, End).
func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.Start) && t.Before(dr.End)
}

// ContainsDateInclusive reports whether t falls inside [Start, End].
func (dr DateRange) ContainsDateInclusive(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.Start) && !t.After(dr.End)
}

// Intersects reports whether the range touches the query window; an unset
// window bound leaves that side unbounded.
func (dr DateRange) Intersects(windowStart, windowEnd time.Time) bool {
	if !windowStart.IsZero() && dr.End.Before(Day(windowStart)) {
		return false
	}
	if !windowEnd.IsZero() && dr.Start.After(Day(windowEnd)) {
		return false
	}
	return true
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
