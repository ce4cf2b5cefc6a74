// Package timeline implements the calendar grid, the drag interaction
// engine, and the overlap lane layout used by the tidsplan views.
package timeline

import "time"

// DateKeyLayout is the canonical day key format.
const DateKeyLayout = "2006-01-02"

// Day is one calendar day on the grid. RelativeIndex is the signed
// offset from today, today itself being zero.
type Day struct {
	RelativeIndex int
	Date          time.Time
	Weekend       bool
}

// Key returns the day's date key.
func (d Day) Key() string {
	return d.Date.Format(DateKeyLayout)
}

// Label returns the short header label for the day column.
func (d Day) Label() string {
	return d.Date.Format("02")
}

// Calendar is an immutable ordered day sequence generated once per
// session, spanning daysBefore days behind today and daysAfter ahead.
type Calendar struct {
	days  []Day
	first int
}

// NewCalendar constructs a new value for this package.
func NewCalendar(today time.Time, daysBefore, daysAfter int) *Calendar {
	if daysBefore < 0 {
		daysBefore = 0
	}
	if daysAfter < 1 {
		daysAfter = 1
	}
	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	days := make([]Day, 0, daysBefore+daysAfter+1)
	for offset := -daysBefore; offset <= daysAfter; offset++ {
		date := base.AddDate(0, 0, offset)
		wd := date.Weekday()
		days = append(days, Day{
			RelativeIndex: offset,
			Date:          date,
			Weekend:       wd == time.Saturday || wd == time.Sunday,
		})
	}
	return &Calendar{days: days, first: -daysBefore}
}

// Days returns the full ordered day sequence.
func (c *Calendar) Days() []Day {
	return c.days
}

// Span returns the inclusive calendar index range covered.
func (c *Calendar) Span() (int, int) {
	return c.first, c.first + len(c.days) - 1
}

// DayAt looks up the day at a calendar index.
func (c *Calendar) DayAt(offset int) (Day, bool) {
	pos := offset - c.first
	if pos < 0 || pos >= len(c.days) {
		return Day{}, false
	}
	return c.days[pos], true
}

// OffsetForKey converts a date key to a calendar index. It reports
// false for unparseable keys and keys outside the generated span.
func (c *Calendar) OffsetForKey(key string) (int, bool) {
	parsed, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return 0, false
	}
	base := c.days[0].Date
	offset := c.first + int(parsed.Sub(base).Hours()/24)
	if _, ok := c.DayAt(offset); !ok {
		return 0, false
	}
	return offset, true
}

// KeyAt converts a calendar index back to a date key.
func (c *Calendar) KeyAt(offset int) (string, bool) {
	day, ok := c.DayAt(offset)
	if !ok {
		return "", false
	}
	return day.Key(), true
}
