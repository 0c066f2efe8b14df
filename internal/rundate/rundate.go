// Package rundate resolves the business date a pipeline run targets.
package rundate

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Resolve returns the calendar date lagDays before now, using now's location.
// Negative lags are treated as zero.
func Resolve(now time.Time, lagDays int) Date {
	if lagDays < 0 {
		lagDays = 0
	}
	return Of(now.AddDate(0, 0, -lagDays))
}

// Today resolves against the host's local clock.
func Today(lagDays int) Date {
	return Resolve(time.Now(), lagDays)
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Stamp formats the date as MMDDYYYY, the suffix used in output filenames.
func (d Date) Stamp() string {
	return fmt.Sprintf("%02d%02d%04d", int(d.Month), d.Day, d.Year)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}
