package memory

import (
	"context"
	"sync"

	"stayhub/internal/app/policies"
	"stayhub/internal/infra/storage/imagedata"
)

// ImageHost keeps decoded images in memory and serves memory:// URLs.
type ImageHost struct {
	mu     sync.RWMutex
	images map[string][]byte
}

func NewImageHost() *ImageHost {
	return &ImageHost{images: make(map[string][]byte)}
}

func (h *ImageHost) Upload(_ context.Context, listingID, encoded string) (string, error) {
	data, _, err := imagedata.Decode(encoded)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.images[listingID] = data
	return "memory://listings/" + listingID, nil
}

var _ policies.ImageHost = (*ImageHost)(nil)
