package listings

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"stayhub/internal/domain/calendar"
	"stayhub/internal/domain/shared/events"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
)

var (
	ErrNotFound            = errors.New("listings: not found")
	ErrIDRequired          = errors.New("listings: id is required")
	ErrHostRequired        = errors.New("listings: host is required")
	ErrTitleRequired       = errors.New("listings: title is required")
	ErrTitleTooLong        = errors.New("listings: title must be under 100 characters")
	ErrDescriptionRequired = errors.New("listings: description is required")
	ErrDescriptionTooLong  = errors.New("listings: description must be under 5000 characters")
	ErrInvalidType         = errors.New("listings: type must be APARTMENT or HOUSE")
	ErrInvalidPrice        = errors.New("listings: price must be greater than 0")
	ErrGuestsLimit         = errors.New("listings: number of guests must be at least 1")
	ErrLocationRequired    = errors.New("listings: country, admin and city are required")
	ErrVersionConflict     = errors.New("listings: concurrent update detected")
)

type ListingID string
type HostID string

type Type string

const (
	TypeApartment Type = "APARTMENT"
	TypeHouse     Type = "HOUSE"
)

func ParseType(raw string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(raw))) {
	case TypeApartment:
		return TypeApartment, nil
	case TypeHouse:
		return TypeHouse, nil
	default:
		return "", ErrInvalidType
	}
}

// Location is the geocoded place of a listing.
type Location struct {
	Country string
	Admin   string
	City    string
}

func (l Location) Valid() bool {
	return strings.TrimSpace(l.Country) != "" && strings.TrimSpace(l.Admin) != "" && strings.TrimSpace(l.City) != ""
}

type Listing struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Image       string
	Type        Type
	Address     string
	Location    Location
	Price       int64
	NumOfGuests int
	Bookings    []string
	Calendar    calendar.Index
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Authorized is true when the viewer is the host. It is set per request and never stored.
	Authorized bool
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateListingParams struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Image       string
	Type        Type
	Address     string
	Location    Location
	Price       int64
	NumOfGuests int
	Now         time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	kind, err := ParseType(string(params.Type))
	if err != nil {
		return nil, err
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if params.NumOfGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if !params.Location.Valid() {
		return nil, ErrLocationRequired
	}
	now := params.Now.UTC()
	listing := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		Title:       title,
		Description: description,
		Image:       strings.TrimSpace(params.Image),
		Type:        kind,
		Address:     strings.TrimSpace(params.Address),
		Location:    params.Location,
		Price:       params.Price,
		NumOfGuests: params.NumOfGuests,
		Bookings:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, Price: listing.Price, At: now})
	return listing, nil
}

// RecordBooking appends a booking id and replaces the calendar with merged,
// which must already contain the booked days.
func (l *Listing) RecordBooking(bookingID string, merged calendar.Index, now time.Time) {
	l.Bookings = append(l.Bookings, bookingID)
	l.Calendar = merged
	l.UpdatedAt = now.UTC()
	l.Record(ListingCalendarUpdatedEvent{ListingID: l.ID, BookingID: bookingID, BookedDays: merged.Len(), At: l.UpdatedAt})
}

// Region renders the location the way search results label it.
func (l *Listing) Region() string {
	return RegionOf(l.Location)
}

func RegionOf(loc Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.Admin, loc.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
