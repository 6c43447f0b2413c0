package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(1500, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)

	_, err = New(10, "dollars")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = New(-1, "USD")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestAddRequiresSameCurrency(t *testing.T) {
	sum, err := Must(100, "USD").Add(Must(50, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(150), sum.Amount)

	_, err = Must(100, "USD").Add(Must(50, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, Must(300, "USD"), Must(100, "USD").Multiply(3))
	assert.Equal(t, "300 USD", Must(300, "USD").String())
}
