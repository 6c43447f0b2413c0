package availability

import (
	"errors"
	"time"

	"stayhub/internal/domain/calendar"
	"stayhub/internal/domain/listings"
)

const (
	DefaultCheckInWindowDays  = 365
	DefaultCheckOutWindowDays = 372
	day                       = 24 * time.Hour
)

var (
	ErrSelfBooking       = errors.New("availability: viewer can't book own listing")
	ErrCheckInTooFar     = errors.New("availability: check in date can't be more than 365 days from today")
	ErrCheckOutTooFar    = errors.New("availability: check out date can't be more than 372 days from today")
	ErrCheckOutBeforeIn  = errors.New("availability: check out date can't be before check in")
	ErrRangeTooLong      = errors.New("availability: requested range is longer than the booking window")
	ErrListingIDRequired = errors.New("availability: listing id is required")
)

// Request is what a booking attempt asks of a listing.
type Request struct {
	CallerID string
	HostID   string
	CheckIn  time.Time
	CheckOut time.Time
}

// Window bounds how far ahead a stay may be booked.
type Window struct {
	CheckInDays  int
	CheckOutDays int
}

func DefaultWindow() Window {
	return Window{CheckInDays: DefaultCheckInWindowDays, CheckOutDays: DefaultCheckOutWindowDays}
}

func (w Window) normalized() Window {
	out := w
	if out.CheckInDays <= 0 {
		out.CheckInDays = DefaultCheckInWindowDays
	}
	if out.CheckOutDays <= 0 {
		out.CheckOutDays = DefaultCheckOutWindowDays
	}
	return out
}

// Validate runs the booking rules in a fixed order; the first failure wins.
// The window limits are inclusive: a check in exactly CheckInDays from now passes.
func (w Window) Validate(req Request, now time.Time) error {
	w = w.normalized()
	if req.CallerID == req.HostID {
		return ErrSelfBooking
	}
	if req.CheckIn.After(now.Add(time.Duration(w.CheckInDays) * day)) {
		return ErrCheckInTooFar
	}
	if req.CheckOut.After(now.Add(time.Duration(w.CheckOutDays) * day)) {
		return ErrCheckOutTooFar
	}
	if req.CheckOut.Before(req.CheckIn) {
		return ErrCheckOutBeforeIn
	}
	return nil
}

// MaxSpanDays is the longest inclusive range a bookable stay can cover.
func (w Window) MaxSpanDays() int {
	return w.normalized().CheckOutDays
}

// CheckSpan rejects ranges no stay inside the window could cover.
func (w Window) CheckSpan(checkIn, checkOut time.Time) error {
	in, out := calendar.DayOf(checkIn), calendar.DayOf(checkOut)
	if out < in {
		return ErrCheckOutBeforeIn
	}
	if int64(out-in)+1 > int64(w.MaxSpanDays()) {
		return ErrRangeTooLong
	}
	return nil
}

// Validate applies the default 365/372 day window.
func Validate(req Request, now time.Time) error {
	return DefaultWindow().Validate(req, now)
}

// Result reports whether a range is free on a listing and, if not, the first taken day.
type Result struct {
	Available   bool
	ConflictDay calendar.Day
}

// Compute checks a range against the listing calendar without touching it.
func Compute(listing *listings.Listing, checkIn, checkOut time.Time) Result {
	d, taken := listing.Calendar.FirstConflict(calendar.DayOf(checkIn), calendar.DayOf(checkOut))
	if taken {
		return Result{Available: false, ConflictDay: d}
	}
	return Result{Available: true}
}
