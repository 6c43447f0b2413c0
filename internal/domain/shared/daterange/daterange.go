package daterange

import (
	"errors"
	"time"

	"stayhub/internal/domain/calendar"
)

var (
	ErrInvalidRange = errors.New("daterange: check out cannot be before check in")
)

// DateRange is an inclusive span of UTC calendar days. A stay that checks in
// and out on the same day occupies one day.
type DateRange struct {
	CheckIn  calendar.Day
	CheckOut calendar.Day
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: calendar.DayOf(checkIn), CheckOut: calendar.DayOf(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut < dr.CheckIn {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts every booked day, check-out day included.
func (dr DateRange) Nights() int64 {
	return int64(dr.CheckOut-dr.CheckIn) + 1
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn <= other.CheckOut && other.CheckIn <= dr.CheckOut
}

func (dr DateRange) Contains(other DateRange) bool {
	return dr.CheckIn <= other.CheckIn && other.CheckOut <= dr.CheckOut
}

func (dr DateRange) ContainsDay(d calendar.Day) bool {
	return dr.CheckIn <= d && d <= dr.CheckOut
}

func (dr DateRange) String() string {
	return dr.CheckIn.String() + ".." + dr.CheckOut.String()
}
