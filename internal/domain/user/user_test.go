package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser(CreateParams{Name: "Ann"})
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = NewUser(CreateParams{ID: "u1", Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	u, err := NewUser(CreateParams{ID: " u1 ", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, ID("u1"), u.ID)
	assert.False(t, u.HasWallet())
	assert.Empty(t, u.Bookings)
}

func TestWalletAndIncome(t *testing.T) {
	now := time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)
	u, err := NewUser(CreateParams{ID: "host", Name: "Host", CreatedAt: now})
	require.NoError(t, err)

	assert.ErrorIs(t, u.ConnectWallet(" ", now), ErrWalletRequired)
	require.NoError(t, u.ConnectWallet("acct_1", now))
	assert.True(t, u.HasWallet())

	require.NoError(t, u.CreditIncome(300, now))
	require.NoError(t, u.CreditIncome(200, now))
	assert.Equal(t, int64(500), u.Income)
	assert.ErrorIs(t, u.CreditIncome(-1, now), ErrNegativeIncome)
	assert.Equal(t, int64(500), u.Income)

	u.DisconnectWallet(now)
	assert.False(t, u.HasWallet())
}
