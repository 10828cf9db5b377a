package market

import "time"

// DailyReturn is one periodic benchmark return, e.g. 0.012 for +1.2%.
type DailyReturn struct {
	Date   time.Time
	Return float64
}

// ReturnSeries is a date-ordered benchmark return history.
type ReturnSeries []DailyReturn

// Until returns the prefix of the series dated on or before asOf, compared by
// calendar day so an intraday asOf includes that day's return.
func (s ReturnSeries) Until(asOf time.Time) ReturnSeries {
	end := Day(asOf)
	n := 0
	for n < len(s) && !Day(s[n].Date).After(end) {
		n++
	}
	return s[:n]
}

// Tail returns the last n observations (or all of them if fewer exist).
func (s ReturnSeries) Tail(n int) ReturnSeries {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return nil
	}
	return s[len(s)-n:]
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
