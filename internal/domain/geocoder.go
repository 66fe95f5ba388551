package domain

import "context"

// Place is one geocoding candidate returned by the upstream address-search
// service, in its relevance order.
type Place struct {
	DisplayName string  `json:"display_name"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
}

// Geocoder resolves a free-text address into ranked candidate places.
// An empty slice with a nil error means the upstream had no candidates for
// the query; that is a valid result, not a failure.
type Geocoder interface {
	Resolve(ctx context.Context, query string, limit int) ([]Place, error)
}
