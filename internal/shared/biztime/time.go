// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone only decides
// where calendar days begin and end, which is what expiry reminders and
// "days remaining" are counted in.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "UTC"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// Location returns the business timezone location, initializing the default
// on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// CalendarDaysBetween counts business calendar day boundaries crossed going
// from `from` to `to`. Times within the same business day yield 0, and the
// result is negative when `to` is earlier.
func CalendarDaysBetween(from, to time.Time) int {
	loc := Location()
	f := from.In(loc)
	t := to.In(loc)
	// Noon-anchored dates keep DST shifts from moving the result off by one.
	fd := time.Date(f.Year(), f.Month(), f.Day(), 12, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}

// AddDays advances t by whole days, preserving the wall-clock time in UTC.
func AddDays(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}

// FormatInBizTimezone formats a UTC time as a string in business timezone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
