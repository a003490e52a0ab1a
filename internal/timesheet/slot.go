package timesheet

import (
	"fmt"
	"time"
)

// originYear/Month/Day is day zero of the spreadsheet serial-date convention
// (the "30 December 1899" epoch Sheets uses for date cells).
const (
	originYear  = 1899
	originMonth = time.December
	originDay   = 30
)

// Origin returns the serial-date epoch in the given location.
func Origin(loc *time.Location) time.Time {
	return time.Date(originYear, originMonth, originDay, 0, 0, 0, 0, loc)
}

// DateFromSerial resolves a serial day number to a calendar date at midnight.
func DateFromSerial(serial int, loc *time.Location) time.Time {
	return Origin(loc).AddDate(0, 0, serial)
}

// Slot is a concrete start/end allocation for one entry.
type Slot struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Cursor carries the per-run slot-chaining state: the serial date of the last
// observed row and the end time computed for the last created timed event.
// Rows must be fed strictly in sheet order; allocation for row n+1 depends on
// row n.
type Cursor struct {
	lastSerial int
	hasSerial  bool
	lastEnd    string // "HH:MM", empty after a day change
}

// Observe registers the row's serial date. Whenever the date differs from the
// previous row's the chained end time resets, so a new day starts fresh from
// the default start time. Called for every dated row, including rows that are
// later filtered out.
func (c *Cursor) Observe(serial int) {
	if !c.hasSerial || serial != c.lastSerial {
		c.lastEnd = ""
	}
	c.lastSerial = serial
	c.hasSerial = true
}

// Allocate computes the entry's time slot. Effective start is the explicit
// start time if present, else the previous entry's computed end, else
// defaultStart. Timed entries advance the chained end time; full-day entries
// span the whole calendar day and leave the chain untouched.
func (c *Cursor) Allocate(e Entry, defaultStart string, loc *time.Location) (Slot, error) {
	c.Observe(e.SerialDate)
	day := DateFromSerial(e.SerialDate, loc)

	from := e.StartTime
	if from == "" {
		from = c.lastEnd
	}
	if from == "" {
		from = defaultStart
	}

	if e.IsFullDay() {
		return Slot{Start: day, End: day.AddDate(0, 0, 1), AllDay: true}, nil
	}

	start, err := AtClock(day, from)
	if err != nil {
		return Slot{}, err
	}
	hours, ok := e.Duration()
	if !ok {
		return Slot{}, fmt.Errorf("line %d: Spent value %q is not a number", e.Line, e.Spent.Text())
	}
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	c.lastEnd = end.Format("15:04")
	return Slot{Start: start, End: end}, nil
}

// AtClock combines a date with an "HH:MM" clock string.
func AtClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad start time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// ClockAtOrAfter reports whether clock a ("HH:MM") is at or after clock b.
// Used for the overtime threshold comparison.
func ClockAtOrAfter(a, b string) (bool, error) {
	ta, err := time.Parse("15:04", a)
	if err != nil {
		return false, fmt.Errorf("bad clock %q: %w", a, err)
	}
	tb, err := time.Parse("15:04", b)
	if err != nil {
		return false, fmt.Errorf("bad clock %q: %w", b, err)
	}
	return !ta.Before(tb), nil
}
