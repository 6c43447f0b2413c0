package listings

import (
	"context"
	"errors"
	"strings"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/page"
)

const searchListingsKey = "listings.search"

type SearchListingsQuery struct {
	Location string
	Filter   string `validate:"omitempty,oneof=PRICE_LOW_TO_HIGH PRICE_HIGH_TO_LOW"`
	Limit    int    `validate:"gte=0,lte=50"`
	Page     int    `validate:"gte=0"`
}

func (q SearchListingsQuery) Key() string { return searchListingsKey }

type SearchListingsHandler struct {
	UoW      uow.UoWFactory
	Geocoder policies.Geocoder
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingsSearch, error) {
	params := domainlistings.SearchParams{
		Order: domainlistings.SortOrder(q.Filter),
		Page:  page.Request{Limit: q.Limit, Number: q.Page},
	}
	var region string
	if location := strings.TrimSpace(q.Location); location != "" {
		if h.Geocoder == nil {
			return dto.ListingsSearch{}, apperr.Msg(apperr.Internal, searchListingsKey, "geocoder not configured")
		}
		loc, err := h.Geocoder.Geocode(ctx, location)
		if err != nil && !errors.Is(err, policies.ErrUnknownLocation) {
			return dto.ListingsSearch{}, apperr.E(apperr.Internal, searchListingsKey, err)
		}
		if strings.TrimSpace(loc.Country) == "" {
			return dto.ListingsSearch{}, apperr.Msg(apperr.InvalidInput, searchListingsKey, "no country found")
		}
		params.Location = loc
		region = domainlistings.RegionOf(loc)
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.ListingsSearch{}, support.RepoError(searchListingsKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	found, err := unit.Listings().Search(execCtx, params.Normalized())
	if err != nil {
		return dto.ListingsSearch{}, support.RepoError(searchListingsKey, err)
	}
	return dto.ListingsSearch{Region: region, Total: found.Total, Result: dto.MapListings(found.Items)}, nil
}

var _ queries.Handler[SearchListingsQuery, dto.ListingsSearch] = (*SearchListingsHandler)(nil)
