package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/page"
	domainuser "stayhub/internal/domain/user"
	infraoutbox "stayhub/internal/infra/outbox"
)

var (
	ErrReadOnlyUnit = errors.New("memory: unit of work is read-only")
	ErrUnitClosed   = errors.New("memory: unit of work already finished")
)

// Store keeps every aggregate in process memory. Units of work stage their
// writes and apply them together on Commit, so readers never see half a booking.
type Store struct {
	mu       sync.RWMutex
	listings map[domainlistings.ListingID]*domainlistings.Listing
	users    map[domainuser.ID]*domainuser.User
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	events   []*outboxEntry

	commitFailure error
}

type outboxEntry struct {
	record    outbox.EventRecord
	state     string
	attempts  int
	nextTry   time.Time
	lastError string
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		users:    make(map[domainuser.ID]*domainuser.User),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
	}
}

// Begin implements uow.UoWFactory.
func (s *Store) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &Unit{
		store:    s,
		readOnly: opts.ReadOnly,
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		users:    make(map[domainuser.ID]*domainuser.User),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
	}, nil
}

// FailNextCommit makes the next Commit return err without applying anything.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFailure = err
}

// SeedListing and SeedUser write fixtures directly, bypassing version checks.
func (s *Store) SeedListing(l *domainlistings.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneListing(l)
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.listings[l.ID] = stored
}

func (s *Store) SeedUser(u *domainuser.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneUser(u)
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.users[u.ID] = stored
}

// Events returns a copy of every outbox record committed so far.
func (s *Store) Events() []outbox.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]outbox.EventRecord, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.record)
	}
	return out
}

func (s *Store) listing(id domainlistings.ListingID) (*domainlistings.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(l), nil
}

func (s *Store) user(id domainuser.ID) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) booking(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *Store) search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if err := ctx.Err(); err != nil {
			return domainlistings.SearchResult{}, err
		}
		if opts.Matches(l) {
			matches = append(matches, l)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		switch opts.Order {
		case domainlistings.PriceLowToHigh:
			if matches[i].Price != matches[j].Price {
				return matches[i].Price < matches[j].Price
			}
		case domainlistings.PriceHighToLow:
			if matches[i].Price != matches[j].Price {
				return matches[i].Price > matches[j].Price
			}
		}
		return matches[i].ID < matches[j].ID
	})
	window := page.Slice(matches, opts.Page)
	items := make([]*domainlistings.Listing, 0, len(window))
	for _, l := range window {
		items = append(items, cloneListing(l))
	}
	return domainlistings.SearchResult{Items: items, Total: len(matches)}, nil
}

// apply validates every staged write against current versions and then
// applies all of them, or none.
func (s *Store) apply(u *Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitFailure; err != nil {
		s.commitFailure = nil
		return err
	}
	for id, staged := range u.listings {
		if current, ok := s.listings[id]; ok && current.Version != staged.Version {
			return domainlistings.ErrVersionConflict
		}
	}
	for id, staged := range u.users {
		if current, ok := s.users[id]; ok && current.Version != staged.Version {
			return domainuser.ErrVersionConflict
		}
	}
	for id := range u.bookings {
		if _, exists := s.bookings[id]; exists {
			return domainbooking.ErrAlreadyExists
		}
	}

	for id, staged := range u.listings {
		stored := cloneListing(staged)
		stored.Version++
		s.listings[id] = stored
	}
	for id, staged := range u.users {
		stored := cloneUser(staged)
		stored.Version++
		s.users[id] = stored
	}
	for id, staged := range u.bookings {
		s.bookings[id] = cloneBooking(staged)
	}
	now := time.Now()
	for _, rec := range u.events {
		s.events = append(s.events, &outboxEntry{record: rec, state: infraoutbox.StateNew, nextTry: now})
	}
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	out := &domainlistings.Listing{
		ID:          l.ID,
		Host:        l.Host,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Type:        l.Type,
		Address:     l.Address,
		Location:    l.Location,
		Price:       l.Price,
		NumOfGuests: l.NumOfGuests,
		Bookings:    append([]string{}, l.Bookings...),
		Calendar:    l.Calendar,
		Version:     l.Version,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	return out
}

func cloneUser(u *domainuser.User) *domainuser.User {
	return &domainuser.User{
		ID:        u.ID,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Contact:   u.Contact,
		TokenHash: u.TokenHash,
		WalletID:  u.WalletID,
		Income:    u.Income,
		Bookings:  append([]string{}, u.Bookings...),
		Listings:  append([]string{}, u.Listings...),
		Version:   u.Version,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        b.ID,
		ListingID: b.ListingID,
		TenantID:  b.TenantID,
		Range:     b.Range,
		Total:     b.Total,
		ReceiptID: b.ReceiptID,
		CreatedAt: b.CreatedAt,
	}
}
