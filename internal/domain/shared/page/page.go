package page

import "math"

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// MaxNumber keeps (Number-1)*Limit+Limit within int for any allowed limit.
const MaxNumber = (math.MaxInt - MaxLimit) / MaxLimit

// Request is a 1-based page of a given size.
type Request struct {
	Limit  int
	Number int
}

func (r Request) Normalized() Request {
	out := r
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if out.Number < 1 {
		out.Number = 1
	}
	if out.Number > MaxNumber {
		out.Number = MaxNumber
	}
	return out
}

func (r Request) Offset() int {
	n := r.Normalized()
	return (n.Number - 1) * n.Limit
}

// Slice returns the window of ids covered by the page.
func Slice[T any](items []T, r Request) []T {
	n := r.Normalized()
	start := n.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + n.Limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}
