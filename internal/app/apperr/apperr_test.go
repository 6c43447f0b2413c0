package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	base := errors.New("calendar: 2021-06-03 is already booked")
	err := fmt.Errorf("handler: %w", E(Conflict, "booking.create", base))

	assert.True(t, errors.Is(err, Conflict))
	assert.False(t, errors.Is(err, NotFound))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, Conflict, KindOf(err))
	assert.True(t, Retryable(err))
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, Retryable(errors.New("boom")))
}

func TestInconsistentIsNeverRetryable(t *testing.T) {
	err := Msg(Inconsistent, "booking.create", "charge captured but booking not stored")
	assert.False(t, Retryable(err))
	assert.Equal(t, "charge captured but booking not stored", Message(err))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	err := E(Internal, "listings.save", errors.New("mongo: connection refused"))
	assert.Equal(t, "internal error", Message(err))
	assert.Equal(t, "listing not found", Message(Msg(NotFound, "listings.get", "listing not found")))
}
