package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("session-token")
	require.NoError(t, err)
	assert.NotEqual(t, "session-token", hash)
	assert.NoError(t, h.Compare(hash, "session-token"))
	assert.Error(t, h.Compare(hash, "other-token"))
}

func TestRandomTokenGenerator(t *testing.T) {
	a, err := RandomTokenGenerator{}.NewToken()
	require.NoError(t, err)
	b, err := RandomTokenGenerator{}.NewToken()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
