package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("booking: not found")
	ErrIDRequired      = errors.New("booking: id is required")
	ErrTenantRequired  = errors.New("booking: tenant id is required")
	ErrListingRequired = errors.New("booking: listing id is required")
	ErrReceiptRequired = errors.New("booking: payment receipt is required")
	ErrAlreadyExists   = errors.New("booking: already exists")
)

type BookingID string

// Booking is an immutable record of a paid stay.
type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	TenantID  string
	Range     daterange.DateRange
	Total     money.Money
	ReceiptID string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByIDs(ctx context.Context, ids []BookingID) ([]*Booking, error)
	Create(ctx context.Context, booking *Booking) error
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	HostID    listings.HostID
	TenantID  string
	Range     daterange.DateRange
	Total     money.Money
	ReceiptID string
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if strings.TrimSpace(params.TenantID) == "" {
		return nil, ErrTenantRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.ReceiptID) == "" {
		return nil, ErrReceiptRequired
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		TenantID:  params.TenantID,
		Range:     params.Range,
		Total:     params.Total,
		ReceiptID: params.ReceiptID,
		CreatedAt: now,
	}
	b.Record(BookingCreated{
		BookingID: b.ID,
		ListingID: b.ListingID,
		HostID:    params.HostID,
		TenantID:  b.TenantID,
		CheckIn:   b.Range.CheckIn.String(),
		CheckOut:  b.Range.CheckOut.String(),
		Total:     b.Total,
		ReceiptID: b.ReceiptID,
		At:        now,
	})
	return b, nil
}
