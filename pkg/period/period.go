package period

import (
	"fmt"
	"time"
)

// Names accepted by Parse.
const (
	Day           = "day"
	Week          = "week"
	Month         = "month"
	SpecificMonth = "specific_month"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// DayOf returns the calendar day containing t.
func DayOf(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekOf returns the Monday-to-Sunday week containing t.
func WeekOf(t time.Time) Range {
	// time.Weekday puts Sunday at 0; shift so Monday is the week start.
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// OfMonth returns the range for a specific year and month.
func OfMonth(year int, month time.Month, loc *time.Location) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// Parse resolves a period name to a concrete range anchored at now.
// SpecificMonth requires year and month; the other names ignore them.
func Parse(name string, year, month int, now time.Time) (Range, error) {
	switch name {
	case Day:
		return DayOf(now), nil
	case Week:
		return WeekOf(now), nil
	case Month:
		return MonthOf(now), nil
	case SpecificMonth:
		if year <= 0 || month < 1 || month > 12 {
			return Range{}, fmt.Errorf("specific_month requires a valid year and month")
		}
		return OfMonth(year, time.Month(month), now.Location()), nil
	default:
		return Range{}, fmt.Errorf("unknown period: %s", name)
	}
}
