package listings

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/page"
)

const listingBookingsKey = "listings.bookings"

type ListingBookingsQuery struct {
	ListingID string `validate:"required"`
	ViewerID  string
	Limit     int `validate:"gte=0,lte=50"`
	Page      int `validate:"gte=0"`
}

func (q ListingBookingsQuery) Key() string { return listingBookingsKey }

// ListingBookingsHandler pages through a listing's bookings.
// Only the host sees them; everyone else gets nil.
type ListingBookingsHandler struct {
	UoW uow.UoWFactory
}

func (h *ListingBookingsHandler) Handle(ctx context.Context, q ListingBookingsQuery) (*dto.Page[dto.Booking], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return nil, support.RepoError(listingBookingsKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return nil, support.RepoError(listingBookingsKey, err)
	}
	if q.ViewerID == "" || q.ViewerID != string(listing.Host) {
		return nil, nil
	}
	ids := page.Slice(listing.Bookings, page.Request{Limit: q.Limit, Number: q.Page})
	items, err := loadBookings(execCtx, unit.Bookings(), ids)
	if err != nil {
		return nil, support.RepoError(listingBookingsKey, err)
	}
	return &dto.Page[dto.Booking]{Total: len(listing.Bookings), Result: dto.MapBookings(items, q.ViewerID)}, nil
}

func loadBookings(ctx context.Context, repo domainbooking.Repository, ids []string) ([]*domainbooking.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	typed := make([]domainbooking.BookingID, 0, len(ids))
	for _, id := range ids {
		typed = append(typed, domainbooking.BookingID(id))
	}
	return repo.ByIDs(ctx, typed)
}

var _ queries.Handler[ListingBookingsQuery, *dto.Page[dto.Booking]] = (*ListingBookingsHandler)(nil)
