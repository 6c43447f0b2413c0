package policies

import "context"

// ListingLocker serializes booking commits per listing.
// The returned release func must be called exactly once.
type ListingLocker interface {
	Lock(ctx context.Context, listingID string) (release func(), err error)
}
