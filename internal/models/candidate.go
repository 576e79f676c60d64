package models

import "encoding/json"

// Distance is either a known distance in kilometres or the unresolved marker.
// The zero value is unresolved.
type Distance struct {
	km       float64
	resolved bool
}

// Kilometres returns a resolved distance.
func Kilometres(km float64) Distance {
	return Distance{km: km, resolved: true}
}

// Unresolved returns the marker used when a coordinate for either end is unknown.
func Unresolved() Distance {
	return Distance{}
}

// Km returns the distance and whether it is known.
func (d Distance) Km() (float64, bool) {
	return d.km, d.resolved
}

// Resolved reports whether the distance is numeric.
func (d Distance) Resolved() bool {
	return d.resolved
}

// MarshalJSON encodes the marker as null.
func (d Distance) MarshalJSON() ([]byte, error) {
	if !d.resolved {
		return []byte("null"), nil
	}

	return json.Marshal(d.km)
}

// Candidate is a restaurant able to fulfil an order, scoped to one ranking pass.
type Candidate struct {
	Restaurant Restaurant
	Distance   Distance
}
