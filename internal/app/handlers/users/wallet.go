package users

import (
	"context"
	"time"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/uow"
	domainuser "stayhub/internal/domain/user"
)

const (
	connectWalletKey    = "users.wallet.connect"
	disconnectWalletKey = "users.wallet.disconnect"
)

// ConnectWalletCommand stores the payout destination returned by the payment provider.
type ConnectWalletCommand struct {
	ViewerID string
	WalletID string `validate:"required"`
}

func (c ConnectWalletCommand) Key() string    { return connectWalletKey }
func (c ConnectWalletCommand) Viewer() string { return c.ViewerID }

type DisconnectWalletCommand struct {
	ViewerID string
}

func (c DisconnectWalletCommand) Key() string    { return disconnectWalletKey }
func (c DisconnectWalletCommand) Viewer() string { return c.ViewerID }

type WalletHandler struct {
	Clock func() time.Time
}

func (h *WalletHandler) Connect(ctx context.Context, cmd ConnectWalletCommand) (dto.Wallet, error) {
	return h.update(ctx, connectWalletKey, cmd.ViewerID, func(u *domainuser.User, now time.Time) error {
		return u.ConnectWallet(cmd.WalletID, now)
	})
}

func (h *WalletHandler) Disconnect(ctx context.Context, cmd DisconnectWalletCommand) (dto.Wallet, error) {
	return h.update(ctx, disconnectWalletKey, cmd.ViewerID, func(u *domainuser.User, now time.Time) error {
		u.DisconnectWallet(now)
		return nil
	})
}

func (h *WalletHandler) update(ctx context.Context, op, viewer string, apply func(*domainuser.User, time.Time) error) (dto.Wallet, error) {
	unit, err := uow.Writable(ctx)
	if err != nil {
		return dto.Wallet{}, apperr.E(apperr.Internal, op, err)
	}
	u, err := unit.Users().ByID(ctx, domainuser.ID(viewer))
	if err != nil {
		return dto.Wallet{}, support.RepoError(op, err)
	}
	if err := apply(u, h.now()); err != nil {
		return dto.Wallet{}, apperr.E(apperr.InvalidInput, op, err)
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.Wallet{}, support.RepoError(op, err)
	}
	return dto.Wallet{UserID: string(u.ID), HasWallet: u.HasWallet()}, nil
}

func (h *WalletHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

