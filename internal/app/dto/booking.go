package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
)

type Booking struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	TenantID  string    `json:"tenant_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Nights    int64     `json:"nights"`
	Total     MoneyDTO  `json:"total"`
	ReceiptID string    `json:"receipt_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MapBooking hides the receipt from anyone but the tenant.
func MapBooking(b *domainbooking.Booking, viewer string) Booking {
	out := Booking{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		TenantID:  b.TenantID,
		CheckIn:   b.Range.CheckIn.String(),
		CheckOut:  b.Range.CheckOut.String(),
		Nights:    b.Range.Nights(),
		Total:     MapMoney(b.Total),
		CreatedAt: b.CreatedAt,
	}
	if viewer != "" && viewer == b.TenantID {
		out.ReceiptID = b.ReceiptID
	}
	return out
}

func MapBookings(items []*domainbooking.Booking, viewer string) []Booking {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, MapBooking(b, viewer))
	}
	return out
}

type Availability struct {
	ListingID   string `json:"listing_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Available   bool   `json:"available"`
	ConflictDay string `json:"conflict_day,omitempty"`
	Nights      int64  `json:"nights"`
	Total       int64  `json:"total"`
}
