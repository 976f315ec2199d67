package body

// OrbitRange returns the closest and farthest a satellite can get to the star
// over one revolution around its planet, assuming the planet's own distance to
// the star stays constant.
func OrbitRange(planetPosition, relativePosition Position) (minDistance, maxDistance float64) {
	d := planetPosition.Distance(Origin)
	r := relativePosition.Distance(Origin)
	return d - r, d + r
}
