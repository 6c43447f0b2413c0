package memory

import (
	"context"

	"stayhub/internal/app/outbox"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

// Unit stages writes until Commit. Reads see the unit's own writes first.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool

	listings map[domainlistings.ListingID]*domainlistings.Listing
	users    map[domainuser.ID]*domainuser.User
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	events   []outbox.EventRecord
}

func (u *Unit) Listings() domainlistings.Repository { return unitListings{u} }
func (u *Unit) Users() domainuser.Repository        { return unitUsers{u} }
func (u *Unit) Bookings() domainbooking.Repository  { return unitBookings{u} }
func (u *Unit) Outbox() outbox.Outbox               { return unitOutbox{u} }

func (u *Unit) Commit(context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if u.readOnly {
		return nil
	}
	return u.store.apply(u)
}

func (u *Unit) Rollback(context.Context) error {
	u.done = true
	return nil
}

func (u *Unit) writable() error {
	switch {
	case u.done:
		return ErrUnitClosed
	case u.readOnly:
		return ErrReadOnlyUnit
	default:
		return nil
	}
}

type unitListings struct{ u *Unit }

func (r unitListings) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if staged, ok := r.u.listings[id]; ok {
		return cloneListing(staged), nil
	}
	return r.u.store.listing(id)
}

func (r unitListings) Save(_ context.Context, l *domainlistings.Listing) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.listings[l.ID] = cloneListing(l)
	return nil
}

func (r unitListings) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	return r.u.store.search(ctx, params)
}

type unitUsers struct{ u *Unit }

func (r unitUsers) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	if staged, ok := r.u.users[id]; ok {
		return cloneUser(staged), nil
	}
	return r.u.store.user(id)
}

func (r unitUsers) Save(_ context.Context, usr *domainuser.User) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.users[usr.ID] = cloneUser(usr)
	return nil
}

type unitBookings struct{ u *Unit }

func (r unitBookings) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if staged, ok := r.u.bookings[id]; ok {
		return cloneBooking(staged), nil
	}
	if b, ok := r.u.store.booking(id); ok {
		return b, nil
	}
	return nil, domainbooking.ErrNotFound
}

func (r unitBookings) ByIDs(ctx context.Context, ids []domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	out := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		b, err := r.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r unitBookings) Create(_ context.Context, b *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, ok := r.u.bookings[b.ID]; ok {
		return domainbooking.ErrAlreadyExists
	}
	r.u.bookings[b.ID] = cloneBooking(b)
	return nil
}

type unitOutbox struct{ u *Unit }

func (o unitOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	if err := o.u.writable(); err != nil {
		return err
	}
	o.u.events = append(o.u.events, rec)
	return nil
}
