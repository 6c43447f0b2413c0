package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/apperr"
)

type hostListing struct {
	Title string `json:"title" validate:"required,max=10"`
	Type  string `json:"type" validate:"required,oneof=APARTMENT HOUSE"`
	Price int64  `json:"price" validate:"gt=0"`
}

type stay struct {
	CheckIn time.Time `validate:"required"`
}

func TestValidateReportsFirstFieldAsInvalidInput(t *testing.T) {
	v := New()
	cases := []struct {
		name string
		msg  any
		want string
	}{
		{"missing title", hostListing{Type: "HOUSE", Price: 1}, "title is required"},
		{"long title", &hostListing{Title: "a very long title", Type: "HOUSE", Price: 1}, "title must not exceed 10 characters"},
		{"bad type", hostListing{Title: "loft", Type: "CASTLE", Price: 1}, "type must be one of [APARTMENT HOUSE]"},
		{"free", hostListing{Title: "loft", Type: "HOUSE"}, "price must be greater than 0"},
		{"zero time", stay{}, "CheckIn is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tc.msg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.InvalidInput))
			assert.Equal(t, tc.want, apperr.Message(err))
		})
	}
}

func TestValidateAcceptsValidAndNonStructMessages(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), hostListing{Title: "loft", Type: "APARTMENT", Price: 100}))
	assert.NoError(t, v.Validate(context.Background(), stay{CheckIn: time.Now()}))
	assert.NoError(t, v.Validate(context.Background(), "not a struct"))
	var nilMsg *hostListing
	assert.NoError(t, v.Validate(context.Background(), nilMsg))
}
