package policies

import (
	"context"
	"errors"

	"stayhub/internal/domain/shared/money"
)

var (
	ErrPaymentDeclined   = errors.New("payments: charge declined")
	ErrRefundUnsupported = errors.New("payments: gateway cannot refund")
)

// Receipt identifies a captured charge.
type Receipt struct {
	ID     string
	Amount money.Money
}

// PaymentGateway charges a tenant's payment source and routes the funds to
// the host's payout destination.
type PaymentGateway interface {
	Charge(ctx context.Context, amount money.Money, source, destination string) (Receipt, error)
}

// Refunder is implemented by gateways that can reverse a charge in full.
type Refunder interface {
	Refund(ctx context.Context, receipt Receipt) error
}
