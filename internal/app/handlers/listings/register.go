package listings

import (
	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
)

type Handlers struct {
	Get      *GetListingHandler
	Bookings *ListingBookingsHandler
	Search   *SearchListingsHandler
	Host     *HostListingHandler
}

func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, h Handlers) {
	queries.RegisterHandler[GetListingQuery, dto.Listing](qs, getListingKey, h.Get)
	queries.RegisterHandler[ListingBookingsQuery, *dto.Page[dto.Booking]](qs, listingBookingsKey, h.Bookings)
	queries.RegisterHandler[SearchListingsQuery, dto.ListingsSearch](qs, searchListingsKey, h.Search)
	commands.RegisterHandler[HostListingCommand, dto.Listing](cmds, hostListingKey, h.Host)
}
