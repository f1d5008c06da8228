package topo

import "math"

// earthRadiusKm is the spherical-earth approximation radius used by the great-circle
// delay calculation. Altitude is ignored — a documented approximation inherited from
// the constellation model this system emulates.
const earthRadiusKm = 6371.0

// speedOfLightKmPerMs is c expressed in km/ms, used to turn a great-circle distance
// into a one-way propagation delay.
const speedOfLightKmPerMs = 299.792458

// GreatCircleDistanceKm computes the spherical-earth great-circle distance between
// two geodetic positions, ignoring altitude.
func GreatCircleDistanceKm(a, b Position) float64 {
	latA := a.LatDeg * math.Pi / 180
	lonA := a.LonDeg * math.Pi / 180
	latB := b.LatDeg * math.Pi / 180
	lonB := b.LonDeg * math.Pi / 180

	sa := math.Sin((latA - latB) / 2)
	sb := math.Sin((lonA - lonB) / 2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(
		sa*sa+math.Cos(latA)*math.Cos(latB)*sb*sb,
	))
}

// PropagationDelayMs is the one-way delay implied by the great-circle distance
// between two positions.
func PropagationDelayMs(a, b Position) float64 {
	return GreatCircleDistanceKm(a, b) / speedOfLightKmPerMs
}
