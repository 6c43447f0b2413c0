package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

const (
	createBookingKey = "booking.create"
	defaultCurrency  = "USD"
	refundTimeout    = 15 * time.Second
)

type CreateBookingCommand struct {
	ViewerID        string
	ListingID       string    `validate:"required"`
	Source          string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) Viewer() string { return c.ViewerID }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// ManagesOwnTransaction is true: the unit of work is opened under the listing lock.
func (c CreateBookingCommand) ManagesOwnTransaction() bool { return true }

// CreateBookingHandler validates a stay, charges the tenant and then commits
// the booking, the calendar, the host income and both booking lists together.
// Nothing is written before the charge succeeds.
type CreateBookingHandler struct {
	UoW      uow.UoWFactory
	Payments policies.PaymentGateway
	Locker   policies.ListingLocker
	Encoder  outbox.EventEncoder
	Window   availability.Window
	Currency string
	Clock    func() time.Time
	NewID    func() string
	Logger   *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	if err := h.ensureDependencies(); err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	viewer := strings.TrimSpace(cmd.ViewerID)
	if viewer == "" {
		return nil, apperr.Msg(apperr.Unauthorized, createBookingKey, "viewer cannot be found")
	}
	now := h.now()

	listing, host, err := h.snapshot(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	req := availability.Request{CallerID: viewer, HostID: string(listing.Host), CheckIn: cmd.CheckIn, CheckOut: cmd.CheckOut}
	if err := h.Window.Validate(req, now); err != nil {
		return nil, validationError(err)
	}
	if !host.HasWallet() {
		return nil, apperr.Msg(apperr.InvalidInput, createBookingKey, "host cannot receive payouts")
	}

	if _, err := calendar.Merge(listing.Calendar, cmd.CheckIn, cmd.CheckOut); err != nil {
		return nil, mergeError(err)
	}

	stay, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, apperr.E(apperr.InvalidInput, createBookingKey, err)
	}
	quote, err := pricing.QuoteRange(listing.Price, h.currency(), stay)
	if err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	total := quote.Total

	receipt, err := h.Payments.Charge(ctx, total, cmd.Source, host.WalletID)
	if err != nil {
		h.logger().WarnContext(ctx, "booking charge failed", "listing_id", listing.ID, "tenant_id", viewer, "error", err)
		return nil, &apperr.Error{Kind: apperr.PaymentFailed, Op: createBookingKey, Msg: "failed to create charge", Err: err}
	}

	created, err := h.commit(ctx, viewer, cmd, receipt, total, now)
	if err != nil {
		return nil, h.compensate(ctx, receipt, err)
	}

	h.logger().InfoContext(ctx, "booking created",
		"booking_id", created.ID,
		"listing_id", created.ListingID,
		"tenant_id", created.TenantID,
		"total", created.Total.Amount,
		"receipt_id", created.ReceiptID,
	)
	result := dto.MapBooking(created, viewer)
	return &result, nil
}

// snapshot loads the listing and its host outside of any lock.
func (h *CreateBookingHandler) snapshot(ctx context.Context, listingID string) (*domainlistings.Listing, *domainuser.User, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return nil, nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, nil, support.RepoError(createBookingKey, err)
	}
	host, err := unit.Users().ByID(execCtx, domainuser.ID(listing.Host))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, nil, apperr.Msg(apperr.NotFound, createBookingKey, "host can't be found")
		}
		return nil, nil, support.RepoError(createBookingKey, err)
	}
	return listing, host, nil
}

// commit re-reads every record under the listing lock and writes them in one unit of work.
func (h *CreateBookingHandler) commit(
	ctx context.Context,
	viewer string,
	cmd CreateBookingCommand,
	receipt policies.Receipt,
	total money.Money,
	now time.Time,
) (*domainbooking.Booking, error) {
	release, err := h.Locker.Lock(ctx, cmd.ListingID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &apperr.Error{Kind: apperr.Conflict, Op: createBookingKey, Msg: "listing is busy, try again", Err: err}
		}
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	defer release()

	unit, execCtx, err := uow.Begin(ctx, h.UoW, uow.TxOptions{})
	if err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}
	merged, err := calendar.Merge(listing.Calendar, cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, mergeError(err)
	}
	host, err := unit.Users().ByID(execCtx, domainuser.ID(listing.Host))
	if err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}
	tenant, err := unit.Users().ByID(execCtx, domainuser.ID(viewer))
	if err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}

	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, apperr.E(apperr.InvalidInput, createBookingKey, err)
	}
	created, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(h.newID()),
		ListingID: listing.ID,
		HostID:    listing.Host,
		TenantID:  viewer,
		Range:     dr,
		Total:     total,
		ReceiptID: receipt.ID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	if err := unit.Bookings().Create(execCtx, created); err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}

	if err := host.CreditIncome(total.Amount, now); err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}
	if err := unit.Users().Save(execCtx, host); err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}
	tenant.AddBooking(string(created.ID), now)
	if err := unit.Users().Save(execCtx, tenant); err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}
	listing.RecordBooking(string(created.ID), merged, now)
	if err := unit.Listings().Save(execCtx, listing); err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}

	pending := append([]events.DomainEvent{}, created.DrainEvents()...)
	pending = append(pending, listing.DrainEvents()...)
	if err := outbox.RecordDomainEvents(execCtx, unit.Outbox(), h.Encoder, pending); err != nil {
		return nil, apperr.E(apperr.Internal, createBookingKey, err)
	}

	if err := unit.Commit(execCtx); err != nil {
		return nil, support.RepoError(createBookingKey, err)
	}
	committed = true
	return created, nil
}

// compensate refunds a captured charge after a failed commit. When the refund
// is impossible the result is Inconsistent and must be reconciled by hand.
func (h *CreateBookingHandler) compensate(ctx context.Context, receipt policies.Receipt, cause error) error {
	refundErr := policies.ErrRefundUnsupported
	if refunder, ok := h.Payments.(policies.Refunder); ok {
		refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
		refundErr = refunder.Refund(refundCtx, receipt)
		cancel()
	}
	if refundErr == nil {
		h.logger().WarnContext(ctx, "booking not recorded, charge refunded", "receipt_id", receipt.ID, "error", cause)
		if apperr.KindOf(cause) == apperr.Conflict {
			return cause
		}
		return apperr.E(apperr.Internal, createBookingKey, cause)
	}
	h.logger().ErrorContext(ctx, "booking not recorded and charge not refunded",
		"receipt_id", receipt.ID,
		"amount", receipt.Amount.Amount,
		"error", cause,
		"refund_error", refundErr,
	)
	return &apperr.Error{
		Kind: apperr.Inconsistent,
		Op:   createBookingKey,
		Msg:  "payment was captured but the booking could not be recorded",
		Err:  errors.Join(cause, refundErr),
	}
}

func validationError(err error) error {
	if errors.Is(err, availability.ErrSelfBooking) {
		return &apperr.Error{Kind: apperr.Unauthorized, Op: createBookingKey, Msg: "viewer can't book own listing", Err: err}
	}
	return apperr.E(apperr.InvalidInput, createBookingKey, err)
}

func mergeError(err error) error {
	if errors.Is(err, calendar.ErrConflict) {
		return &apperr.Error{Kind: apperr.Conflict, Op: createBookingKey, Msg: "selected dates can't overlap dates that have already been booked", Err: err}
	}
	return apperr.E(apperr.InvalidInput, createBookingKey, err)
}

func (h *CreateBookingHandler) ensureDependencies() error {
	switch {
	case h.UoW == nil:
		return errors.New("booking: unit of work factory required")
	case h.Payments == nil:
		return errors.New("booking: payment gateway required")
	case h.Locker == nil:
		return errors.New("booking: listing locker required")
	default:
		return nil
	}
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *CreateBookingHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return defaultCurrency
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func Register(bus *commands.InMemoryBus, h *CreateBookingHandler) {
	commands.RegisterHandler[CreateBookingCommand, *dto.Booking](bus, createBookingKey, h)
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.SelfManagedTx = CreateBookingCommand{}
