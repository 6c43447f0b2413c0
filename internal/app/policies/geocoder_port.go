package policies

import (
	"context"
	"errors"

	domainlistings "stayhub/internal/domain/listings"
)

var (
	ErrUnknownLocation = errors.New("geocoder: location could not be resolved")
	ErrInvalidImage    = errors.New("images: image is not valid base64")
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (domainlistings.Location, error)
}

// ImageHost stores an uploaded listing image and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, listingID string, encoded string) (string, error)
}
