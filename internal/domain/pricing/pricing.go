package pricing

import (
	"errors"
	"time"

	"stayhub/internal/domain/calendar"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var ErrNightlyPrice = errors.New("pricing: nightly price must be positive")

// ComputeTotal charges nightly for every UTC day from checkIn through checkOut.
// Only the UTC calendar day of each instant counts.
func ComputeTotal(nightly int64, checkIn, checkOut time.Time) int64 {
	dr := daterange.DateRange{CheckIn: calendar.DayOf(checkIn), CheckOut: calendar.DayOf(checkOut)}
	return nightly * dr.Nights()
}

// Quote is the priced breakdown returned to callers before and after a booking.
type Quote struct {
	Nights  int64       `json:"nights"`
	Nightly money.Money `json:"nightly"`
	Total   money.Money `json:"total"`
}

// QuoteRange prices a validated range in the given currency.
func QuoteRange(nightly int64, currency string, dr daterange.DateRange) (Quote, error) {
	if nightly <= 0 {
		return Quote{}, ErrNightlyPrice
	}
	if err := dr.Validate(); err != nil {
		return Quote{}, err
	}
	rate, err := money.New(nightly, currency)
	if err != nil {
		return Quote{}, err
	}
	nights := dr.Nights()
	return Quote{Nights: nights, Nightly: rate, Total: rate.Multiply(nights)}, nil
}
