package geocoding

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/courier/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method performs exactly one request to the external service
// and returns the coordinates of the address or an error describing why it
// could not be resolved. Implementations never retry and never cache.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// checkCoordinates rejects points outside geographic bounds.
func checkCoordinates(lon, lat float64) (*models.Coordinates, error) {
	coords := models.Coordinates{Longitude: lon, Latitude: lat}
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: lon=%f lat=%f", err, lon, lat)
	}

	return &coords, nil
}
