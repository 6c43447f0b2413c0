package support

import (
	"context"
	"errors"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one.
// cleanup is nil when the unit came from ctx.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	unit, execCtx, err := uow.Begin(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// RepoError classifies repository failures: missing records become NotFound.
func RepoError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, domainlistings.ErrNotFound):
		return apperr.Msg(apperr.NotFound, op, "listing can't be found")
	case errors.Is(err, domainuser.ErrNotFound):
		return apperr.Msg(apperr.NotFound, op, "user can't be found")
	case errors.Is(err, domainbooking.ErrNotFound):
		return apperr.Msg(apperr.NotFound, op, "booking can't be found")
	case errors.Is(err, domainlistings.ErrVersionConflict), errors.Is(err, domainuser.ErrVersionConflict):
		return apperr.E(apperr.Conflict, op, err)
	default:
		return apperr.E(apperr.Internal, op, err)
	}
}
