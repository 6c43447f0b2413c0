package calendar

import (
	"fmt"
	"time"
)

const (
	secondsPerDay = 24 * 60 * 60
	dayLayout     = "2006-01-02"
)

// Day is a UTC calendar day counted from 1970-01-01.
type Day int64

// DayOf converts t to UTC and drops the time-of-day component.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DayFromDate builds a Day from a year, a 1-based month and a day of month.
// Out-of-range values are normalized the same way time.Date does.
func DayFromDate(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("calendar: parse day %q: %w", raw, err)
	}
	return DayOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// Date splits the day into year, 1-based month and day of month.
func (d Day) Date() (int, time.Month, int) {
	return d.Time().Date()
}

func (d Day) String() string {
	return d.Time().Format(dayLayout)
}
