package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

var (
	ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")
	ErrUnitClosed              = errors.New("mongo: unit of work already finished")
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories read the session from the context returned by InjectContext.
type Factory struct {
	DB *mongo.Database

	ListingsRepo domainlistings.Repository
	UsersRepo    domainuser.Repository
	BookingsRepo domainbooking.Repository
	OutboxStore  outbox.Outbox
}

func NewFactory(db *mongo.Database, events outbox.Outbox) Factory {
	return Factory{
		DB:           db,
		ListingsRepo: NewListingRepository(db),
		UsersRepo:    NewUserRepository(db),
		BookingsRepo: NewBookingRepository(db),
		OutboxStore:  events,
	}
}

// Begin starts a session; writable units also open a snapshot transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	unit := &Unit{
		session:  session,
		readOnly: opts.ReadOnly,
		listings: f.ListingsRepo,
		users:    f.UsersRepo,
		bookings: f.BookingsRepo,
		outbox:   f.OutboxStore,
	}
	if opts.ReadOnly {
		return unit, nil
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return unit, nil
}

type Unit struct {
	session  mongo.Session
	readOnly bool
	done     bool

	listings domainlistings.Repository
	users    domainuser.Repository
	bookings domainbooking.Repository
	outbox   outbox.Outbox
}

func (u *Unit) Listings() domainlistings.Repository { return u.listings }
func (u *Unit) Users() domainuser.Repository        { return u.users }
func (u *Unit) Bookings() domainbooking.Repository  { return u.bookings }
func (u *Unit) Outbox() outbox.Outbox               { return u.outbox }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
