package geo

import "math"

// MaxServiceRadius is the maximum distance, in coordinate units, between a
// rental request's origin and a station for the station to serve the request.
const MaxServiceRadius = 500.0

// Distance calculates the planar Euclidean distance between two coordinate
// pairs. Coordinates are treated as points on a plane; no geographic
// projection correction is applied.
func Distance(lng1, lat1, lng2, lat2 float64) float64 {
	dLng := lng1 - lng2
	dLat := lat1 - lat2
	return math.Sqrt(dLng*dLng + dLat*dLat)
}

// WithinRadius checks if two coordinates are within the specified radius.
// The boundary is inclusive: a point at exactly radius units away is within.
func WithinRadius(lng1, lat1, lng2, lat2, radius float64) bool {
	return Distance(lng1, lat1, lng2, lat2) <= radius
}
