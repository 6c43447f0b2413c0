package uow

import (
	"context"
	"errors"
)

var (
	ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")
	ErrReadOnlyUnit      = errors.New("uow: unit of work in context is read-only")
)

type unitKey struct{}

type boundUnit struct {
	unit UnitOfWork
	opts TxOptions
}

// ContextWithUnitOfWork binds a unit and the options it was opened with to ctx.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork, opts TxOptions) context.Context {
	return context.WithValue(ctx, unitKey{}, boundUnit{unit: unit, opts: opts})
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	bound, ok := ctx.Value(unitKey{}).(boundUnit)
	if !ok || bound.unit == nil {
		return nil, false
	}
	return bound.unit, true
}

// Writable returns the unit bound to ctx for handlers that save aggregates.
// A read-only unit is refused before any repository write is attempted.
func Writable(ctx context.Context) (UnitOfWork, error) {
	bound, ok := ctx.Value(unitKey{}).(boundUnit)
	if !ok || bound.unit == nil {
		return nil, ErrUnitOfWorkMissing
	}
	if bound.opts.ReadOnly {
		return nil, ErrReadOnlyUnit
	}
	return bound.unit, nil
}
