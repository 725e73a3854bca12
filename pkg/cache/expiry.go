package cache

import "time"

const DateLayout = "2006-01-02"

// StartOfDay is local midnight at the beginning of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextMidnight is the instant an entry stamped on t's day expires.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// Fresh reports whether an entry stamped with date is still valid at now.
// Entries expire at the first local midnight after their date.
func Fresh(date string, now time.Time) bool {
	stamped, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	return !now.Before(stamped) && now.Before(NextMidnight(stamped))
}
