package dto

import (
	"time"

	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
)

type Listing struct {
	ID            string         `json:"id"`
	Host          string         `json:"host"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	Type          string         `json:"type"`
	Address       string         `json:"address"`
	Country       string         `json:"country"`
	Admin         string         `json:"admin"`
	City          string         `json:"city"`
	Price         int64          `json:"price"`
	NumOfGuests   int            `json:"num_of_guests"`
	BookingsIndex calendar.Index `json:"bookings_index"`
	Authorized    bool           `json:"authorized"`
	CreatedAt     time.Time      `json:"created_at"`
}

func MapListing(l *domainlistings.Listing) Listing {
	return Listing{
		ID:            string(l.ID),
		Host:          string(l.Host),
		Title:         l.Title,
		Description:   l.Description,
		Image:         l.Image,
		Type:          string(l.Type),
		Address:       l.Address,
		Country:       l.Location.Country,
		Admin:         l.Location.Admin,
		City:          l.Location.City,
		Price:         l.Price,
		NumOfGuests:   l.NumOfGuests,
		BookingsIndex: l.Calendar,
		Authorized:    l.Authorized,
		CreatedAt:     l.CreatedAt,
	}
}

func MapListings(items []*domainlistings.Listing) []Listing {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		out = append(out, MapListing(l))
	}
	return out
}

type ListingsSearch struct {
	Region string    `json:"region,omitempty"`
	Total  int       `json:"total"`
	Result []Listing `json:"result"`
}
