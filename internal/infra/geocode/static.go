package geocode

import (
	"context"
	"strings"

	"stayhub/internal/app/policies"
	domainlistings "stayhub/internal/domain/listings"
)

// Static resolves addresses without an external service. Known places are
// matched case-insensitively; anything else is read as "..., City, Admin, Country".
type Static struct {
	Places map[string]domainlistings.Location
}

func (g Static) Geocode(ctx context.Context, address string) (domainlistings.Location, error) {
	if err := ctx.Err(); err != nil {
		return domainlistings.Location{}, err
	}
	key := normalize(address)
	if key == "" {
		return domainlistings.Location{}, policies.ErrUnknownLocation
	}
	for name, loc := range g.Places {
		if normalize(name) == key {
			return loc, nil
		}
	}

	var parts []string
	for _, p := range strings.Split(address, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	n := len(parts)
	if n == 0 {
		return domainlistings.Location{}, policies.ErrUnknownLocation
	}
	var loc domainlistings.Location
	loc.Country = parts[n-1]
	if n >= 2 {
		loc.Admin = parts[n-2]
	}
	if n >= 3 {
		loc.City = parts[n-3]
	}
	return loc, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
