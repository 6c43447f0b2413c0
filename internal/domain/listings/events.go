package listings

import (
	"time"
)

type ListingCreatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	Price     int64     `json:"price"`
	At        time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingCalendarUpdatedEvent struct {
	ListingID  ListingID `json:"listing_id"`
	BookingID  string    `json:"booking_id"`
	BookedDays int       `json:"booked_days"`
	At         time.Time `json:"at"`
}

func (e ListingCalendarUpdatedEvent) EventName() string     { return "listing.calendar_updated" }
func (e ListingCalendarUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCalendarUpdatedEvent) OccurredAt() time.Time { return e.At }
