package users

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainuser "stayhub/internal/domain/user"
)

const (
	getUserKey      = "users.get"
	userBookingsKey = "users.bookings"
	userListingsKey = "users.listings"
)

type GetUserQuery struct {
	UserID   string `validate:"required"`
	ViewerID string
}

func (q GetUserQuery) Key() string { return getUserKey }

type GetUserHandler struct {
	UoW uow.UoWFactory
}

func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (dto.User, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.User{}, support.RepoError(getUserKey, err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, err := unit.Users().ByID(execCtx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.User{}, support.RepoError(getUserKey, err)
	}
	u.Authorized = q.ViewerID != "" && q.ViewerID == string(u.ID)
	return dto.MapUser(u), nil
}

var _ queries.Handler[GetUserQuery, dto.User] = (*GetUserHandler)(nil)
