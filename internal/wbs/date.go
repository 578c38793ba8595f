package wbs

import "time"

// DateLayout is the calendar date format used for task start and end dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Date is a calendar date without time of day. It is kept as text so that
// malformed values survive a round trip and are treated as "no date" by the
// engine instead of failing ingestion.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns the date at UTC midnight. ok is false for empty or
// unparsable values.
func (d Date) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) Valid() bool {
	_, ok := d.Time()
	return ok
}

// midnight truncates t to its calendar day in its own location and returns
// that day at UTC midnight, so it compares directly with parsed Dates.
func midnight(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the whole number of days from one midnight to another,
// rounded toward negative infinity.
func daysBetween(from, to time.Time) int {
	diff := to.Sub(from)
	days := int(diff / day)
	if diff%day < 0 {
		days--
	}
	return days
}
