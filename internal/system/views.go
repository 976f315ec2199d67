package system

import (
	"strings"

	"starsystem-server/internal/body"
)

// The view builders read session state and expect the caller to hold at
// least the read lock.

func refOf(b body.Body) BodyRef {
	return BodyRef{ID: b.ID(), Name: b.Name(), Kind: b.Kind()}
}

func refsOf(bodies []body.Body) []BodyRef {
	refs := make([]BodyRef, 0, len(bodies))
	for _, b := range bodies {
		refs = append(refs, refOf(b))
	}
	return refs
}

func (session *Session) view() *SystemView {
	planets := session.star.Planets()
	v := &SystemView{
		ID:                  session.ID,
		RelativePositioning: session.relativePositioning,
		Star: StarView{
			ID:       session.star.ID(),
			Name:     session.star.Name(),
			Mass:     session.star.Mass(),
			Position: session.star.Position(),
		},
		Planets: make([]PlanetView, 0, len(planets)),
	}
	for _, p := range planets {
		v.Planets = append(v.Planets, session.planetView(p))
	}
	return v
}

func (session *Session) planetView(p *body.Planet) PlanetView {
	satellites := p.Satellites()
	v := PlanetView{
		ID:         p.ID(),
		Name:       p.Name(),
		Mass:       p.Mass(),
		Position:   p.Position(),
		Satellites: make([]SatelliteView, 0, len(satellites)),
	}
	for _, sat := range satellites {
		v.Satellites = append(v.Satellites, session.satelliteView(sat))
	}
	return v
}

func (session *Session) satelliteView(sat *body.Satellite) SatelliteView {
	position := sat.Position()
	if session.relativePositioning {
		position = sat.RelativePosition()
	}
	return SatelliteView{
		ID:              sat.ID(),
		Name:            sat.Name(),
		Mass:            sat.Mass(),
		Position:        position,
		Relative:        session.relativePositioning,
		MinStarDistance: sat.MinStarDistance(),
		MaxStarDistance: sat.MaxStarDistance(),
	}
}

// describe builds the find answer for b, which must belong to the session.
func (session *Session) describe(b body.Body) *BodyDescription {
	d := &BodyDescription{
		Kind:     b.Kind(),
		ID:       b.ID(),
		Name:     b.Name(),
		Mass:     b.Mass(),
		Position: b.Position(),
	}

	path := []string{session.star.Name()}
	switch v := b.(type) {
	case *body.Star:
		count := v.PlanetCount()
		d.PlanetCount = &count
	case *body.Planet:
		pv := session.planetView(v)
		d.Planet = &pv
		path = append(path, v.Name())
	case *body.Satellite:
		sv := session.satelliteView(v)
		d.Satellite = &sv
		if planet, ok := session.star.OrbitingPlanet(v); ok {
			ref := refOf(planet)
			d.OrbitingPlanet = &ref
			path = append(path, planet.Name())
		}
		path = append(path, v.Name())
	}
	d.Path = strings.Join(path, " > ")
	return d
}
