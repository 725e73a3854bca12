// Package timefmt renders tracker timestamps in a fixed display zone with a
// relative "ago" suffix.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

const outLayout = "2006-01-02 15:04:05"

// naive ISO-8601 layouts, read as UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type Formatter struct {
	loc  *time.Location
	name string
}

// New returns a formatter for a fixed UTC offset labelled name, e.g. 330 / "IST".
func New(offsetMinutes int, name string) *Formatter {
	return &Formatter{loc: time.FixedZone(name, offsetMinutes*60), name: name}
}

func (f *Formatter) Location() *time.Location { return f.loc }

// Parse reads RFC 3339 timestamps, with or without a zone designator.
func Parse(ts string) (time.Time, error) {
	s := strings.TrimSpace(ts)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", ts)
}

// Format renders ts as "YYYY-MM-DD HH:MM:SS TZ (… ago)" relative to now.
// Unparseable input is returned unchanged.
func (f *Formatter) Format(ts string, now time.Time) string {
	t, err := Parse(ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s %s (%s)", t.In(f.loc).Format(outLayout), f.name, Ago(now.Sub(t)))
}

// Ago renders a non-negative elapsed duration as "Nm ago", "Nh ago" or "Nh Nm ago".
func Ago(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d / time.Minute)
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm ago", m)
	case m == 0:
		return fmt.Sprintf("%dh ago", h)
	default:
		return fmt.Sprintf("%dh %dm ago", h, m)
	}
}
