package listings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

const hostListingKey = "listings.host"

type HostListingCommand struct {
	ViewerID    string
	Title       string `validate:"required,max=100"`
	Description string `validate:"required,max=5000"`
	Image       string `validate:"required"`
	Type        string `validate:"required,oneof=APARTMENT HOUSE"`
	Address     string `validate:"required"`
	Price       int64  `validate:"gt=0"`
	NumOfGuests int    `validate:"gte=1"`
}

func (c HostListingCommand) Key() string { return hostListingKey }

func (c HostListingCommand) Viewer() string { return c.ViewerID }

// HostListingHandler creates a listing for the viewer. It expects the
// transaction middleware to supply the unit of work.
type HostListingHandler struct {
	Geocoder policies.Geocoder
	Images   policies.ImageHost
	Encoder  outbox.EventEncoder
	Clock    func() time.Time
	NewID    func() string
	Logger   *slog.Logger
}

func (h *HostListingHandler) Handle(ctx context.Context, cmd HostListingCommand) (dto.Listing, error) {
	unit, err := uow.Writable(ctx)
	if err != nil {
		return dto.Listing{}, apperr.E(apperr.Internal, hostListingKey, err)
	}
	if cmd.ViewerID == "" {
		return dto.Listing{}, apperr.Msg(apperr.Unauthorized, hostListingKey, "viewer cannot be found")
	}
	host, err := unit.Users().ByID(ctx, domainuser.ID(cmd.ViewerID))
	if err != nil {
		return dto.Listing{}, support.RepoError(hostListingKey, err)
	}

	loc, err := h.Geocoder.Geocode(ctx, cmd.Address)
	if err != nil && !errors.Is(err, policies.ErrUnknownLocation) {
		return dto.Listing{}, apperr.E(apperr.Internal, hostListingKey, err)
	}
	if !loc.Valid() {
		return dto.Listing{}, apperr.Msg(apperr.InvalidInput, hostListingKey, "invalid address input")
	}

	id := h.newID()
	imageURL, err := h.Images.Upload(ctx, id, cmd.Image)
	if err != nil {
		if errors.Is(err, policies.ErrInvalidImage) {
			return dto.Listing{}, apperr.Msg(apperr.InvalidInput, hostListingKey, "image must be base64 encoded")
		}
		return dto.Listing{}, apperr.E(apperr.Internal, hostListingKey, err)
	}

	now := h.now()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(id),
		Host:        domainlistings.HostID(host.ID),
		Title:       cmd.Title,
		Description: cmd.Description,
		Image:       imageURL,
		Type:        domainlistings.Type(cmd.Type),
		Address:     cmd.Address,
		Location:    loc,
		Price:       cmd.Price,
		NumOfGuests: cmd.NumOfGuests,
		Now:         now,
	})
	if err != nil {
		return dto.Listing{}, apperr.E(apperr.InvalidInput, hostListingKey, err)
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.Listing{}, support.RepoError(hostListingKey, err)
	}
	host.AddListing(id, now)
	if err := unit.Users().Save(ctx, host); err != nil {
		return dto.Listing{}, support.RepoError(hostListingKey, err)
	}
	if err := outbox.RecordDomainEvents(ctx, unit.Outbox(), h.Encoder, listing.DrainEvents()); err != nil {
		return dto.Listing{}, apperr.E(apperr.Internal, hostListingKey, err)
	}

	h.logger().InfoContext(ctx, "listing hosted", "listing_id", id, "host_id", host.ID)
	listing.Authorized = true
	return dto.MapListing(listing), nil
}

func (h *HostListingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *HostListingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *HostListingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[HostListingCommand, dto.Listing] = (*HostListingHandler)(nil)
