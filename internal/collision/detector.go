// Package collision decides whether the orbits of any two bodies in a star
// system overlap. Orbits are static: a planet is a circle around the star at
// its current distance, a satellite is the annulus [MinStarDistance,
// MaxStarDistance] it sweeps while revolving around its planet.
//
// Several tests compare floating-point values exactly. Values that are equal
// on paper but computed along different paths can differ in the last bit, so
// the star/satellite and planet/planet checks almost never fire in practice.
package collision

import (
	"starsystem-server/internal/body"
)

// Pair is two colliding bodies, in flattening order.
type Pair struct {
	A body.Body
	B body.Body
}

type entry struct {
	body body.Body
	// orbiting is set for satellites only.
	orbiting *body.Planet
}

// Detect reports whether any two distinct bodies of the system collide.
func Detect(star *body.Star) bool {
	_, found := FirstCollision(star)
	return found
}

// FirstCollision returns the first colliding pair found. It stops at the
// first hit and does not enumerate the others.
func FirstCollision(star *body.Star) (Pair, bool) {
	if star == nil {
		return Pair{}, false
	}
	bodies := flatten(star)
	for i := 0; i < len(bodies)-1; i++ {
		for j := i + 1; j < len(bodies); j++ {
			if collide(star, bodies[i], bodies[j]) {
				return Pair{A: bodies[i].body, B: bodies[j].body}, true
			}
		}
	}
	return Pair{}, false
}

// flatten lists the star, then all planets, then all satellites.
func flatten(star *body.Star) []entry {
	planets := star.Planets()
	entries := make([]entry, 0, 1+len(planets))
	entries = append(entries, entry{body: star})
	for _, p := range planets {
		entries = append(entries, entry{body: p})
	}
	for _, p := range planets {
		for _, sat := range p.Satellites() {
			entries = append(entries, entry{body: sat, orbiting: p})
		}
	}
	return entries
}

func collide(star *body.Star, a, b entry) bool {
	if b.body.Kind() < a.body.Kind() {
		a, b = b, a
	}

	switch a.body.Kind() {
	case body.KindStar:
		switch b.body.Kind() {
		case body.KindStar, body.KindPlanet:
			return false
		case body.KindSatellite:
			return starSatellite(star, b)
		}
	case body.KindPlanet:
		switch b.body.Kind() {
		case body.KindPlanet:
			return a.body.Position().Equal(b.body.Position())
		case body.KindSatellite:
			return planetSatellite(star, a.body.(*body.Planet), b)
		}
	case body.KindSatellite:
		return satelliteSatellite(a.body.(*body.Satellite), b.body.(*body.Satellite))
	}
	return false
}

// starSatellite fires when the satellite's orbit radius equals its planet's
// distance to the star, i.e. the satellite's circle passes through the star.
func starSatellite(star *body.Star, sat entry) bool {
	s := sat.body.(*body.Satellite)
	planetDistance := sat.orbiting.Position().Distance(star.Position())
	orbitRadius := s.RelativePosition().Distance(star.Position())
	return planetDistance == orbitRadius
}

// planetSatellite fires when the planet's circle crosses the satellite's
// annulus, bounds inclusive. A satellite always lies in its own planet's
// annulus, so that pair is skipped.
func planetSatellite(star *body.Star, planet *body.Planet, sat entry) bool {
	if sat.orbiting != nil && sat.orbiting.ID() == planet.ID() {
		return false
	}
	s := sat.body.(*body.Satellite)
	d := planet.Position().Distance(star.Position())
	return s.MinStarDistance() <= d && d <= s.MaxStarDistance()
}

func satelliteSatellite(a, b *body.Satellite) bool {
	return !(a.MaxStarDistance() < b.MinStarDistance() || b.MaxStarDistance() < a.MinStarDistance())
}
