package listings

import (
	"strings"

	"stayhub/internal/domain/shared/page"
)

// SortOrder is the price ordering offered by search.
type SortOrder string

const (
	PriceLowToHigh SortOrder = "PRICE_LOW_TO_HIGH"
	PriceHighToLow SortOrder = "PRICE_HIGH_TO_LOW"
)

type SearchParams struct {
	Host     HostID
	Location Location
	Order    SortOrder
	Page     page.Request
}

func (p SearchParams) Normalized() SearchParams {
	out := p
	out.Location = Location{
		Country: strings.TrimSpace(out.Location.Country),
		Admin:   strings.TrimSpace(out.Location.Admin),
		City:    strings.TrimSpace(out.Location.City),
	}
	switch SortOrder(strings.ToUpper(string(out.Order))) {
	case PriceLowToHigh:
		out.Order = PriceLowToHigh
	case PriceHighToLow:
		out.Order = PriceHighToLow
	default:
		out.Order = ""
	}
	out.Page = out.Page.Normalized()
	return out
}

// Matches applies the location filter; an empty field matches anything.
func (p SearchParams) Matches(l *Listing) bool {
	if p.Host != "" && l.Host != p.Host {
		return false
	}
	if p.Location.Country != "" && !strings.EqualFold(l.Location.Country, p.Location.Country) {
		return false
	}
	if p.Location.Admin != "" && !strings.EqualFold(l.Location.Admin, p.Location.Admin) {
		return false
	}
	if p.Location.City != "" && !strings.EqualFold(l.Location.City, p.Location.City) {
		return false
	}
	return true
}

type SearchResult struct {
	Items []*Listing
	Total int
}
