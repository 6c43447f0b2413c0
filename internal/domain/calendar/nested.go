package calendar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Nested is the year -> month (0-based) -> day-of-month view of an index,
// the shape clients already consume as "bookingsIndex".
type Nested map[int]map[int]map[int]bool

func (i Index) Nested() Nested {
	out := make(Nested)
	for d := range i.days {
		y, m, day := d.Date()
		month := int(m) - 1
		if out[y] == nil {
			out[y] = make(map[int]map[int]bool)
		}
		if out[y][month] == nil {
			out[y][month] = make(map[int]bool)
		}
		out[y][month][day] = true
	}
	return out
}

// FromNested rebuilds an index; entries set to false are treated as free days.
func FromNested(n Nested) (Index, error) {
	var days []Day
	for y, months := range n {
		for m, ds := range months {
			if m < 0 || m > 11 {
				return Index{}, fmt.Errorf("calendar: month %d out of range", m)
			}
			for d, booked := range ds {
				if !booked {
					continue
				}
				if d < 1 || d > daysIn(y, time.Month(m+1)) {
					return Index{}, fmt.Errorf("calendar: day %d out of range for %d-%02d", d, y, m+1)
				}
				days = append(days, DayFromDate(y, time.Month(m+1), d))
			}
		}
	}
	return Of(days...), nil
}

func (i Index) MarshalJSON() ([]byte, error) {
	wire := make(map[string]map[string]map[string]bool)
	for y, months := range i.Nested() {
		ys := strconv.Itoa(y)
		wire[ys] = make(map[string]map[string]bool, len(months))
		for m, ds := range months {
			ms := strconv.Itoa(m)
			wire[ys][ms] = make(map[string]bool, len(ds))
			for d := range ds {
				wire[ys][ms][strconv.Itoa(d)] = true
			}
		}
	}
	return json.Marshal(wire)
}

func (i *Index) UnmarshalJSON(data []byte) error {
	var wire map[string]map[string]map[string]bool
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("calendar: decode index: %w", err)
	}
	n := make(Nested, len(wire))
	for ys, months := range wire {
		y, err := strconv.Atoi(ys)
		if err != nil {
			return fmt.Errorf("calendar: bad year %q", ys)
		}
		n[y] = make(map[int]map[int]bool, len(months))
		for ms, ds := range months {
			m, err := strconv.Atoi(ms)
			if err != nil {
				return fmt.Errorf("calendar: bad month %q", ms)
			}
			n[y][m] = make(map[int]bool, len(ds))
			for dstr, booked := range ds {
				d, err := strconv.Atoi(dstr)
				if err != nil {
					return fmt.Errorf("calendar: bad day %q", dstr)
				}
				n[y][m][d] = booked
			}
		}
	}
	idx, err := FromNested(n)
	if err != nil {
		return err
	}
	*i = idx
	return nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
