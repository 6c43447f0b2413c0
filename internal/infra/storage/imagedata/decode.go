package imagedata

import (
	"encoding/base64"
	"net/http"
	"strings"

	"stayhub/internal/app/policies"
)

// Decode accepts raw base64 or a "data:<mime>;base64," URL and sniffs the content type.
func Decode(encoded string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i > 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, "", policies.ErrInvalidImage
	}
	return data, http.DetectContentType(data), nil
}

// Extension maps an image content type to a file suffix.
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
