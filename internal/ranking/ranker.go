// Package ranking orders the restaurants able to fulfil an order by their distance to the delivery address.
package ranking

import (
	"cmp"

	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/shopspring/decimal"
	"github.com/tidwall/geodesic"
	"golang.org/x/exp/slices"
)

// distancePrecision is the number of decimal places kept for kilometres.
const distancePrecision = 2

// Pair is a candidate restaurant together with its resolved coordinates, nil when unknown.
type Pair struct {
	Restaurant  models.Restaurant
	Coordinates *models.Coordinates
}

// DistanceKm returns the geodesic distance between two points on the WGS-84 ellipsoid,
// rounded to two decimal places.
func DistanceKm(from, to models.Coordinates) float64 {
	var meters float64
	geodesic.WGS84.Inverse(from.Latitude, from.Longitude, to.Latitude, to.Longitude, &meters, nil, nil)

	const metersInKm = 1000
	km, _ := decimal.NewFromFloat(meters / metersInKm).Round(distancePrecision).Float64()

	return km
}

// Rank computes a distance for every candidate and returns them nearest first.
// A candidate whose coordinates, or the order's, are unknown gets the unresolved marker
// and is placed after all numeric distances. Equal keys keep their input order.
func Rank(orderCoords *models.Coordinates, pairs []Pair) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(pairs))
	for _, pair := range pairs {
		distance := models.Unresolved()
		if orderCoords != nil && pair.Coordinates != nil {
			distance = models.Kilometres(DistanceKm(*orderCoords, *pair.Coordinates))
		}
		candidates = append(candidates, models.Candidate{Restaurant: pair.Restaurant, Distance: distance})
	}

	slices.SortStableFunc(candidates, compareCandidates)

	return candidates
}

func compareCandidates(a, b models.Candidate) int {
	aKm, aOK := a.Distance.Km()
	bKm, bOK := b.Distance.Km()

	switch {
	case aOK && bOK:
		return cmp.Compare(aKm, bKm)
	case aOK:
		return -1
	case bOK:
		return 1
	default:
		return 0
	}
}
