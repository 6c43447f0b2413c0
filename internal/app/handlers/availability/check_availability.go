package availability

import (
	"context"
	"time"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainavailability "stayhub/internal/domain/availability"
	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
)

const checkAvailabilityKey = "availability.check"

// CheckAvailabilityQuery asks whether a listing is free for a stay without reserving it.
type CheckAvailabilityQuery struct {
	ListingID string    `validate:"required"`
	CheckIn   time.Time `validate:"required"`
	CheckOut  time.Time `validate:"required"`
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoW    uow.UoWFactory
	Window domainavailability.Window
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	if err := h.Window.CheckSpan(q.CheckIn, q.CheckOut); err != nil {
		return dto.Availability{}, apperr.E(apperr.InvalidInput, checkAvailabilityKey, err)
	}
	in, out := calendar.DayOf(q.CheckIn), calendar.DayOf(q.CheckOut)
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.Availability{}, apperr.E(apperr.Internal, checkAvailabilityKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Availability{}, support.RepoError(checkAvailabilityKey, err)
	}

	res := domainavailability.Compute(listing, q.CheckIn, q.CheckOut)
	view := dto.Availability{
		ListingID: string(listing.ID),
		CheckIn:   in.String(),
		CheckOut:  out.String(),
		Available: res.Available,
		Nights:    int64(out-in) + 1,
		Total:     pricing.ComputeTotal(listing.Price, q.CheckIn, q.CheckOut),
	}
	if !res.Available {
		view.ConflictDay = res.ConflictDay.String()
	}
	return view, nil
}

func Register(bus *queries.InMemoryBus, h *CheckAvailabilityHandler) {
	queries.RegisterHandler[CheckAvailabilityQuery, dto.Availability](bus, checkAvailabilityKey, h)
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
