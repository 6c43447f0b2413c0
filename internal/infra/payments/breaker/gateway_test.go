package breaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

type scriptedGateway struct {
	calls int
	err   error
}

func (g *scriptedGateway) Charge(context.Context, money.Money, string, string) (policies.Receipt, error) {
	g.calls++
	if g.err != nil {
		return policies.Receipt{}, g.err
	}
	return policies.Receipt{ID: fmt.Sprintf("chrg_%d", g.calls)}, nil
}

func TestBreakerOpensAfterConsecutiveOutages(t *testing.T) {
	inner := &scriptedGateway{err: errors.New("connection refused")}
	g := Wrap(inner, Settings{ConsecutiveFails: 2, Timeout: time.Minute}, nil)
	amount := money.Must(100, "USD")

	for i := 0; i < 2; i++ {
		_, err := g.Charge(context.Background(), amount, "tok", "wallet")
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Charge(context.Background(), amount, "tok", "wallet")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestDeclinesDoNotTripBreaker(t *testing.T) {
	inner := &scriptedGateway{err: policies.ErrPaymentDeclined}
	g := Wrap(inner, Settings{ConsecutiveFails: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := g.Charge(context.Background(), money.Must(100, "USD"), "tok", "wallet")
		assert.ErrorIs(t, err, policies.ErrPaymentDeclined)
	}
	assert.Equal(t, "closed", g.State())
	assert.Equal(t, 3, inner.calls)
}

func TestRefundRequiresRefunder(t *testing.T) {
	g := Wrap(&scriptedGateway{}, Settings{}, nil)
	receipt, err := g.Charge(context.Background(), money.Must(100, "USD"), "tok", "wallet")
	require.NoError(t, err)
	assert.Equal(t, "chrg_1", receipt.ID)
	assert.ErrorIs(t, g.Refund(context.Background(), receipt), policies.ErrRefundUnsupported)
}
