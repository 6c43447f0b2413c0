package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

var ErrGatewayUnavailable = errors.New("payments: gateway temporarily unavailable")

type Settings struct {
	Name             string
	Timeout          time.Duration
	ConsecutiveFails uint32
}

// Gateway stops calling a failing payment provider for a while.
// Declined charges are business outcomes and never trip the breaker.
type Gateway struct {
	next policies.PaymentGateway
	cb   *gobreaker.CircuitBreaker
}

func Wrap(next policies.PaymentGateway, st Settings, logger *slog.Logger) *Gateway {
	if st.Name == "" {
		st.Name = "payments"
	}
	if st.ConsecutiveFails == 0 {
		st.ConsecutiveFails = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: 1,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payment circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, policies.ErrPaymentDeclined) || errors.Is(err, context.Canceled)
		},
	})
	return &Gateway{next: next, cb: cb}
}

func (g *Gateway) Charge(ctx context.Context, amount money.Money, source, destination string) (policies.Receipt, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Charge(ctx, amount, source, destination)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return policies.Receipt{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
		}
		return policies.Receipt{}, err
	}
	return out.(policies.Receipt), nil
}

// Refund bypasses the breaker: a compensation must always be attempted.
func (g *Gateway) Refund(ctx context.Context, receipt policies.Receipt) error {
	refunder, ok := g.next.(policies.Refunder)
	if !ok {
		return policies.ErrRefundUnsupported
	}
	return refunder.Refund(ctx, receipt)
}

func (g *Gateway) State() string {
	return g.cb.State().String()
}

var (
	_ policies.PaymentGateway = (*Gateway)(nil)
	_ policies.Refunder       = (*Gateway)(nil)
)
