package models

import (
	"errors"
	"time"
)

// ErrCoordinatesOutOfRange is returned when a longitude or latitude falls outside valid geographic bounds.
var ErrCoordinatesOutOfRange = errors.New("coordinates out of range")

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 `json:"lon"` // Longitude of the geographical point.
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
}

// Validate reports whether the point lies within [-180,180] longitude and [-90,90] latitude.
func (c Coordinates) Validate() error {
	const maxLon, maxLat = 180, 90
	if c.Longitude < -maxLon || c.Longitude > maxLon || c.Latitude < -maxLat || c.Latitude > maxLat {
		return ErrCoordinatesOutOfRange
	}

	return nil
}

// CoordinateCacheEntry is a persisted address resolution. Entries are never updated once written.
type CoordinateCacheEntry struct {
	Address     string
	Coordinates Coordinates
	ResolvedAt  time.Time
}
