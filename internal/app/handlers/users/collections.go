package users

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/page"
	domainuser "stayhub/internal/domain/user"
)

type UserBookingsQuery struct {
	UserID   string `validate:"required"`
	ViewerID string
	Limit    int `validate:"gte=0,lte=50"`
	Page     int `validate:"gte=0"`
}

func (q UserBookingsQuery) Key() string { return userBookingsKey }

// UserBookingsHandler returns nil unless the viewer is the user.
type UserBookingsHandler struct {
	UoW uow.UoWFactory
}

func (h *UserBookingsHandler) Handle(ctx context.Context, q UserBookingsQuery) (*dto.Page[dto.Booking], error) {
	if q.ViewerID == "" || q.ViewerID != q.UserID {
		return nil, nil
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return nil, support.RepoError(userBookingsKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, err := unit.Users().ByID(execCtx, domainuser.ID(q.UserID))
	if err != nil {
		return nil, support.RepoError(userBookingsKey, err)
	}
	ids := page.Slice(u.Bookings, page.Request{Limit: q.Limit, Number: q.Page})
	typed := make([]domainbooking.BookingID, 0, len(ids))
	for _, id := range ids {
		typed = append(typed, domainbooking.BookingID(id))
	}
	items := []*domainbooking.Booking{}
	if len(typed) > 0 {
		items, err = unit.Bookings().ByIDs(execCtx, typed)
		if err != nil {
			return nil, support.RepoError(userBookingsKey, err)
		}
	}
	return &dto.Page[dto.Booking]{Total: len(u.Bookings), Result: dto.MapBookings(items, q.ViewerID)}, nil
}

type UserListingsQuery struct {
	UserID string `validate:"required"`
	Limit  int    `validate:"gte=0,lte=50"`
	Page   int    `validate:"gte=0"`
}

func (q UserListingsQuery) Key() string { return userListingsKey }

type UserListingsHandler struct {
	UoW uow.UoWFactory
}

func (h *UserListingsHandler) Handle(ctx context.Context, q UserListingsQuery) (dto.Page[dto.Listing], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.Page[dto.Listing]{}, support.RepoError(userListingsKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, err := unit.Users().ByID(execCtx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.Page[dto.Listing]{}, support.RepoError(userListingsKey, err)
	}
	ids := page.Slice(u.Listings, page.Request{Limit: q.Limit, Number: q.Page})
	items := make([]*domainlistings.Listing, 0, len(ids))
	for _, id := range ids {
		l, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(id))
		if err != nil {
			return dto.Page[dto.Listing]{}, support.RepoError(userListingsKey, err)
		}
		items = append(items, l)
	}
	return dto.Page[dto.Listing]{Total: len(u.Listings), Result: dto.MapListings(items)}, nil
}

var (
	_ queries.Handler[UserBookingsQuery, *dto.Page[dto.Booking]] = (*UserBookingsHandler)(nil)
	_ queries.Handler[UserListingsQuery, dto.Page[dto.Listing]]  = (*UserListingsHandler)(nil)
)
