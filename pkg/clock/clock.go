// Package clock provides the injectable wall clock and calendar-day
// arithmetic used by the daily reset and tool expiry logic.
//
// Calendar days are always computed in a fixed reference location chosen
// by the game, never UTC and never the device's ambient zone, so that a
// player crossing timezones does not get an extra daily reset.
//
// Note: Manual is not goroutine-safe. Like the rest of the engine it is
// driven from a single logical thread.
package clock

import (
	"fmt"
	"time"

	// Embedded zone database so the reference zone resolves on hosts
	// without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// DayLayout is the persisted calendar-day format.
const DayLayout = "2006-01-02"

// DefaultZone is the reference timezone when none is configured.
const DefaultZone = "Asia/Tokyo"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Manual is a settable clock for tests and replays.
type Manual struct {
	t time.Time
}

// NewManual returns a Manual clock starting at t.
func NewManual(t time.Time) *Manual { return &Manual{t: t} }

// Now returns the manual time.
func (m *Manual) Now() time.Time { return m.t }

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) { m.t = t }

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.t = m.t.Add(d)
	return m.t
}

// LoadZone resolves a zone name, falling back to DefaultZone when empty.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return loc, nil
}

// Day returns the calendar day of t in loc, formatted with DayLayout.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// Today returns the calendar day of c.Now() in loc.
func Today(c Clock, loc *time.Location) string {
	return Day(c.Now(), loc)
}

// NextMidnight returns the first instant of the day after t in loc.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
