package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrUnknownCharge   = errors.New("memory payments: unknown charge")
	ErrAlreadyRefunded = errors.New("memory payments: charge already refunded")
)

// Charge is one captured payment held by PaymentGateway.
type Charge struct {
	ID          string
	Amount      money.Money
	Source      string
	Destination string
	Refunded    bool
}

// PaymentGateway records charges in memory. Sources starting with "tok_fail"
// are declined, which lets local runs and tests exercise the failure path.
type PaymentGateway struct {
	mu         sync.Mutex
	seq        int
	charges    []*Charge
	refundErr  error
	declineAll error
}

func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{}
}

func (g *PaymentGateway) Charge(ctx context.Context, amount money.Money, source, destination string) (policies.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return policies.Receipt{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.declineAll != nil {
		return policies.Receipt{}, g.declineAll
	}
	if strings.HasPrefix(source, "tok_fail") {
		return policies.Receipt{}, fmt.Errorf("%w: source %s", policies.ErrPaymentDeclined, source)
	}
	g.seq++
	ch := &Charge{
		ID:          fmt.Sprintf("chrg_mem_%04d", g.seq),
		Amount:      amount,
		Source:      source,
		Destination: destination,
	}
	g.charges = append(g.charges, ch)
	return policies.Receipt{ID: ch.ID, Amount: amount}, nil
}

func (g *PaymentGateway) Refund(_ context.Context, receipt policies.Receipt) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return g.refundErr
	}
	for _, ch := range g.charges {
		if ch.ID != receipt.ID {
			continue
		}
		if ch.Refunded {
			return ErrAlreadyRefunded
		}
		ch.Refunded = true
		return nil
	}
	return ErrUnknownCharge
}

// DeclineAll makes every following charge fail with err; nil restores charging.
func (g *PaymentGateway) DeclineAll(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declineAll = err
}

// FailRefunds makes every following refund fail with err.
func (g *PaymentGateway) FailRefunds(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundErr = err
}

// Charges returns copies of all charges in the order they were made.
func (g *PaymentGateway) Charges() []Charge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Charge, 0, len(g.charges))
	for _, ch := range g.charges {
		out = append(out, *ch)
	}
	return out
}

var (
	_ policies.PaymentGateway = (*PaymentGateway)(nil)
	_ policies.Refunder       = (*PaymentGateway)(nil)
)
