package booking

import (
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	HostID    listings.HostID    `json:"host_id"`
	TenantID  string             `json:"tenant_id"`
	CheckIn   string             `json:"check_in"`
	CheckOut  string             `json:"check_out"`
	Total     money.Money        `json:"total"`
	ReceiptID string             `json:"receipt_id"`
	At        time.Time          `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }
