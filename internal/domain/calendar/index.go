package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrConflict     = errors.New("calendar: selected dates overlap dates already booked")
	ErrInvalidRange = errors.New("calendar: check out cannot precede check in")
)

// ConflictError names the first already-booked day met while merging a range.
type ConflictError struct {
	Day Day
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("calendar: %s is already booked", e.Day)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Index is the sparse set of booked days of one listing.
// Values are immutable: every update returns a new Index.
type Index struct {
	days map[Day]struct{}
}

// Of builds an index holding the given days.
func Of(days ...Day) Index {
	if len(days) == 0 {
		return Index{}
	}
	set := make(map[Day]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return Index{days: set}
}

func (i Index) Contains(d Day) bool {
	_, ok := i.days[d]
	return ok
}

func (i Index) Len() int {
	return len(i.days)
}

func (i Index) IsEmpty() bool {
	return len(i.days) == 0
}

// Days returns the booked days in ascending order.
func (i Index) Days() []Day {
	out := make([]Day, 0, len(i.days))
	for d := range i.days {
		out = append(out, d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Equal reports whether both indexes mark exactly the same days.
func (i Index) Equal(other Index) bool {
	if len(i.days) != len(other.days) {
		return false
	}
	for d := range i.days {
		if !other.Contains(d) {
			return false
		}
	}
	return true
}

// FirstConflict walks checkIn..checkOut inclusive and returns the first booked day.
func (i Index) FirstConflict(checkIn, checkOut Day) (Day, bool) {
	for d := checkIn; d <= checkOut; d++ {
		if i.Contains(d) {
			return d, true
		}
	}
	return 0, false
}

// With returns a copy of the index with checkIn..checkOut (inclusive) marked booked.
// The receiver is left untouched whatever the outcome.
func (i Index) With(checkIn, checkOut Day) (Index, error) {
	if checkOut < checkIn {
		return Index{}, ErrInvalidRange
	}
	next := make(map[Day]struct{}, len(i.days)+int(checkOut-checkIn)+1)
	for d := range i.days {
		next[d] = struct{}{}
	}
	for d := checkIn; d <= checkOut; d++ {
		if _, booked := next[d]; booked {
			return Index{}, &ConflictError{Day: d}
		}
		next[d] = struct{}{}
	}
	return Index{days: next}, nil
}

// Merge marks every UTC day from checkIn through checkOut on top of existing.
// Only the UTC calendar day of the inputs matters.
func Merge(existing Index, checkIn, checkOut time.Time) (Index, error) {
	return existing.With(DayOf(checkIn), DayOf(checkOut))
}
