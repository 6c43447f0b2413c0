package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

var now = time.Date(2021, time.May, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	payments *memory.PaymentGateway
	handler  *CreateBookingHandler
}

func newFixture(t *testing.T, hostWallet string) fixture {
	t.Helper()
	store := memory.NewStore()
	for _, p := range []domainuser.CreateParams{
		{ID: "host-1", Name: "Hannah", WalletID: hostWallet},
		{ID: "tenant-1", Name: "Tom"},
		{ID: "tenant-2", Name: "Tara"},
	} {
		u, err := domainuser.NewUser(p)
		require.NoError(t, err)
		store.SeedUser(u)
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          "listing-1",
		Host:        "host-1",
		Title:       "Loft",
		Description: "Bright loft",
		Type:        domainlistings.TypeApartment,
		Address:     "Toronto, Ontario, Canada",
		Location:    domainlistings.Location{Country: "Canada", Admin: "Ontario", City: "Toronto"},
		Price:       100,
		NumOfGuests: 2,
		Now:         now,
	})
	require.NoError(t, err)
	store.SeedListing(listing)

	payments := memory.NewPaymentGateway()
	return fixture{
		store:    store,
		payments: payments,
		handler: &CreateBookingHandler{
			UoW:      store,
			Payments: payments,
			Locker:   memory.NewLocker(),
			Encoder:  outbox.JSONEventEncoder{},
			Window:   availability.DefaultWindow(),
			Clock:    func() time.Time { return now },
		},
	}
}

func stay(viewer, checkIn, checkOut string) CreateBookingCommand {
	in, _ := time.Parse("2006-01-02", checkIn)
	out, _ := time.Parse("2006-01-02", checkOut)
	return CreateBookingCommand{ViewerID: viewer, ListingID: "listing-1", Source: "tok_visa", CheckIn: in, CheckOut: out}
}

func (f fixture) listing(t *testing.T) *domainlistings.Listing {
	t.Helper()
	unit, err := f.store.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = unit.Rollback(context.Background()) }()
	l, err := unit.Listings().ByID(context.Background(), "listing-1")
	require.NoError(t, err)
	return l
}

func (f fixture) user(t *testing.T, id string) *domainuser.User {
	t.Helper()
	unit, err := f.store.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = unit.Rollback(context.Background()) }()
	u, err := unit.Users().ByID(context.Background(), domainuser.ID(id))
	require.NoError(t, err)
	return u
}

func TestCreateBookingCommitsEverything(t *testing.T) {
	f := newFixture(t, "recp_host")

	got, err := f.handler.Handle(context.Background(), stay("tenant-1", "2021-06-01", "2021-06-03"))
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.Total.Amount)
	assert.Equal(t, "USD", got.Total.Currency)
	assert.Equal(t, int64(3), got.Nights)

	charges := f.payments.Charges()
	require.Len(t, charges, 1)
	assert.Equal(t, "recp_host", charges[0].Destination)
	assert.Equal(t, got.ReceiptID, charges[0].ID)

	l := f.listing(t)
	assert.Equal(t, []string{got.ID}, l.Bookings)
	assert.Equal(t, 3, l.Calendar.Len())
	assert.True(t, l.Calendar.Contains(calendar.DayFromDate(2021, time.June, 2)))
	assert.Equal(t, int64(300), f.user(t, "host-1").Income)
	assert.Equal(t, []string{got.ID}, f.user(t, "tenant-1").Bookings)

	var names []string
	for _, ev := range f.store.Events() {
		names = append(names, ev.Name)
	}
	assert.ElementsMatch(t, []string{"booking.created", "listing.calendar_updated"}, names)
}

func TestOverlappingStayIsConflictAndNotCharged(t *testing.T) {
	f := newFixture(t, "recp_host")
	_, err := f.handler.Handle(context.Background(), stay("tenant-1", "2021-06-01", "2021-06-03"))
	require.NoError(t, err)

	_, err = f.handler.Handle(context.Background(), stay("tenant-2", "2021-06-03", "2021-06-05"))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.True(t, errors.Is(err, calendar.ErrConflict))
	assert.Len(t, f.payments.Charges(), 1)
	assert.Equal(t, 3, f.listing(t).Calendar.Len())
}

func TestRejectionsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		name   string
		wallet string
		cmd    CreateBookingCommand
		setup  func(f fixture)
		kind   apperr.Kind
	}{
		{name: "anonymous", wallet: "recp_host", cmd: stay("", "2021-06-01", "2021-06-03"), kind: apperr.Unauthorized},
		{name: "self booking", wallet: "recp_host", cmd: stay("host-1", "2021-06-01", "2021-06-03"), kind: apperr.Unauthorized},
		{name: "self booking, host without wallet", cmd: stay("host-1", "2021-06-01", "2021-06-03"), kind: apperr.Unauthorized},
		{name: "host without wallet", cmd: stay("tenant-1", "2021-06-01", "2021-06-03"), kind: apperr.InvalidInput},
		{name: "check out before check in", wallet: "recp_host", cmd: stay("tenant-1", "2021-06-05", "2021-06-03"), kind: apperr.InvalidInput},
		{name: "check in too far ahead", wallet: "recp_host", cmd: stay("tenant-1", "2022-06-01", "2022-06-03"), kind: apperr.InvalidInput},
		{
			name:   "unknown listing",
			wallet: "recp_host",
			cmd: func() CreateBookingCommand {
				c := stay("tenant-1", "2021-06-01", "2021-06-03")
				c.ListingID = "missing"
				return c
			}(),
			kind: apperr.NotFound,
		},
		{
			name:   "declined card",
			wallet: "recp_host",
			cmd:    stay("tenant-1", "2021-06-01", "2021-06-03"),
			setup:  func(f fixture) { f.payments.DeclineAll(errors.New("card declined")) },
			kind:   apperr.PaymentFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.wallet)
			if tc.setup != nil {
				tc.setup(f)
			}
			_, err := f.handler.Handle(context.Background(), tc.cmd)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))

			assert.True(t, f.listing(t).Calendar.IsEmpty())
			assert.Empty(t, f.listing(t).Bookings)
			assert.Zero(t, f.user(t, "host-1").Income)
			assert.Empty(t, f.store.Events())
		})
	}
}

func TestCommitFailureRefundsCharge(t *testing.T) {
	f := newFixture(t, "recp_host")
	f.store.FailNextCommit(errors.New("disk full"))

	_, err := f.handler.Handle(context.Background(), stay("tenant-1", "2021-06-01", "2021-06-03"))
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))

	charges := f.payments.Charges()
	require.Len(t, charges, 1)
	assert.True(t, charges[0].Refunded)
	assert.True(t, f.listing(t).Calendar.IsEmpty())
}

func TestCommitFailureWithoutRefundIsInconsistent(t *testing.T) {
	f := newFixture(t, "recp_host")
	f.store.FailNextCommit(errors.New("disk full"))
	f.payments.FailRefunds(errors.New("provider down"))

	_, err := f.handler.Handle(context.Background(), stay("tenant-1", "2021-06-01", "2021-06-03"))
	require.Error(t, err)
	assert.Equal(t, apperr.Inconsistent, apperr.KindOf(err))
	assert.False(t, apperr.Retryable(err))
	assert.False(t, f.payments.Charges()[0].Refunded)
}

func TestConcurrentBookingsForSameDaysOnlyOneWins(t *testing.T) {
	f := newFixture(t, "recp_host")
	const attempts = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.handler.Handle(context.Background(), stay("tenant-1", "2021-07-01", "2021-07-04"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperr.KindOf(err) == apperr.Conflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
	kept := 0
	for _, ch := range f.payments.Charges() {
		if !ch.Refunded {
			kept++
		}
	}
	assert.Equal(t, 1, kept)
	assert.Equal(t, 4, f.listing(t).Calendar.Len())
	assert.Equal(t, int64(400), f.user(t, "host-1").Income)
}

func TestLockTimeoutIsRetryableConflict(t *testing.T) {
	f := newFixture(t, "recp_host")
	locker := memory.NewLocker()
	release, err := locker.Lock(context.Background(), "listing-1")
	require.NoError(t, err)
	defer release()
	f.handler.Locker = locker

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = f.handler.Handle(ctx, stay("tenant-1", "2021-06-01", "2021-06-03"))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
	assert.True(t, f.payments.Charges()[0].Refunded)
}
