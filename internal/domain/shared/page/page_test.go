package page

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalized(t *testing.T) {
	cases := []struct {
		name string
		in   Request
		want Request
	}{
		{"defaults", Request{}, Request{Limit: DefaultLimit, Number: 1}},
		{"limit capped", Request{Limit: 500, Number: 3}, Request{Limit: MaxLimit, Number: 3}},
		{"number capped", Request{Limit: 10, Number: math.MaxInt}, Request{Limit: 10, Number: MaxNumber}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalized())
		})
	}
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, []string{"a", "b"}, Slice(items, Request{Limit: 2, Number: 1}))
	assert.Equal(t, []string{"e"}, Slice(items, Request{Limit: 2, Number: 3}))
	assert.Empty(t, Slice(items, Request{Limit: 2, Number: 4}))
}

func TestHugePageNumberIsEmptyWindow(t *testing.T) {
	for _, r := range []Request{
		{Limit: 10, Number: math.MaxInt/10 + 2},
		{Limit: MaxLimit, Number: math.MaxInt},
		{Limit: 1, Number: math.MaxInt},
	} {
		assert.GreaterOrEqual(t, r.Offset(), 0)
		assert.Empty(t, Slice([]int{1, 2, 3}, r))
	}
}
