// Package geocode contains the external geocoding provider clients. Each
// provider resolves a free-form location name independently; ordering and
// fallback live in the geocoding service.
package geocode

import "context"

// Provider source identifiers.
const (
	SourceGoogle = "google"
	SourceMapbox = "mapbox"
	SourceOSM    = "osm"
)

// Result is a resolved location. Immutable once produced.
type Result struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
	Source           string  `json:"source"`
}

// Provider resolves a location name to coordinates. A nil Result with a
// nil error means the provider had no match; callers fall through to the
// next provider in either case.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, location string) (*Result, error)
}
