package body

import (
	"slices"
	"strings"

	"starsystem-server/internal/shared/errors"
)

// Planets returns the star's planets in insertion order.
func (s *Star) Planets() []*Planet {
	return slices.Clone(s.planets)
}

func (s *Star) PlanetCount() int {
	return len(s.planets)
}

// AddPlanet appends p. A full collection or a planet already present leaves
// the star unchanged.
func (s *Star) AddPlanet(p *Planet) error {
	if p == nil {
		return errors.Validation("planet is required")
	}
	if len(s.planets) >= MaxPlanets {
		return errors.CapacityExceededf("star %s (%s) already holds the maximum of %d planets", s.name, s.id, MaxPlanets)
	}
	if _, exists := s.planetIDs[p.id]; exists {
		return errors.Conflictf("planet %s already orbits star %s", p.id, s.name)
	}

	s.planets = append(s.planets, p)
	s.planetIDs[p.id] = struct{}{}
	return nil
}

// RemovePlanet drops every satellite of p, then p itself. Removing a planet
// that is not present does nothing.
func (s *Star) RemovePlanet(p *Planet) {
	if p == nil {
		return
	}
	i := slices.IndexFunc(s.planets, func(candidate *Planet) bool { return candidate.id == p.id })
	if i < 0 {
		return
	}

	s.planets[i].clearSatellites()
	s.planets = slices.Delete(s.planets, i, i+1)
	delete(s.planetIDs, p.id)
}

// FindPlanet looks a planet up by id, then by name.
func (s *Star) FindPlanet(query string) (*Planet, bool) {
	for _, p := range s.planets {
		if p.id == query {
			return p, true
		}
	}
	for _, p := range s.planets {
		if matchesName(p.name, query) {
			return p, true
		}
	}
	return nil, false
}

// FindCelestialBody searches the star, then every planet, then every planet's
// satellites. An id match anywhere in the system wins over a name match.
func (s *Star) FindCelestialBody(query string) (Body, bool) {
	if b, ok := s.find(query, func(b Body) bool { return b.ID() == query }); ok {
		return b, true
	}
	return s.find(query, func(b Body) bool { return matchesName(b.Name(), query) })
}

func (s *Star) find(query string, match func(Body) bool) (Body, bool) {
	if match(s) {
		return s, true
	}
	for _, p := range s.planets {
		if match(p) {
			return p, true
		}
	}
	for _, p := range s.planets {
		for _, sat := range p.satellites {
			if match(sat) {
				return sat, true
			}
		}
	}
	return nil, false
}

// FindSatellite looks a satellite up across all planets, by id first and then
// by name. It also returns the planet the satellite orbits.
func (s *Star) FindSatellite(query string) (*Satellite, *Planet, bool) {
	for _, p := range s.planets {
		if _, exists := p.satelliteIDs[query]; exists {
			sat, _ := p.FindSatellite(query)
			return sat, p, true
		}
	}
	for _, p := range s.planets {
		for _, sat := range p.satellites {
			if matchesName(sat.name, query) {
				return sat, p, true
			}
		}
	}
	return nil, nil, false
}

// OrbitingPlanet returns the planet whose collection holds sat.
func (s *Star) OrbitingPlanet(sat *Satellite) (*Planet, bool) {
	if sat == nil {
		return nil, false
	}
	for _, p := range s.planets {
		if p.Orbits(sat) {
			return p, true
		}
	}
	return nil, false
}

// Contains reports whether b belongs to this star's hierarchy.
func (s *Star) Contains(b Body) bool {
	if b == nil {
		return false
	}
	switch b.Kind() {
	case KindStar:
		return b.ID() == s.id
	case KindPlanet:
		_, ok := s.planetIDs[b.ID()]
		return ok
	case KindSatellite:
		_, ok := s.OrbitingPlanet(b.(*Satellite))
		return ok
	default:
		return false
	}
}

// Bodies flattens the hierarchy: the star, every planet, then every satellite.
func (s *Star) Bodies() []Body {
	bodies := make([]Body, 0, 1+len(s.planets))
	bodies = append(bodies, s)
	for _, p := range s.planets {
		bodies = append(bodies, p)
	}
	for _, p := range s.planets {
		for _, sat := range p.satellites {
			bodies = append(bodies, sat)
		}
	}
	return bodies
}

// Satellites returns the planet's satellites in insertion order.
func (p *Planet) Satellites() []*Satellite {
	return slices.Clone(p.satellites)
}

func (p *Planet) SatelliteCount() int {
	return len(p.satellites)
}

// AddSatellite appends sat. The satellite must have been built for p.
func (p *Planet) AddSatellite(sat *Satellite) error {
	if sat == nil {
		return errors.Validation("satellite is required")
	}
	if sat.planetID != p.id {
		return errors.Validationf("satellite %s was built for planet %s, not %s", sat.id, sat.planetID, p.id)
	}
	if len(p.satellites) >= MaxSatellites {
		return errors.CapacityExceededf("planet %s (%s) already holds the maximum of %d satellites", p.name, p.id, MaxSatellites)
	}
	if _, exists := p.satelliteIDs[sat.id]; exists {
		return errors.Conflictf("satellite %s already orbits planet %s", sat.id, p.name)
	}

	p.satellites = append(p.satellites, sat)
	p.satelliteIDs[sat.id] = struct{}{}
	return nil
}

// RemoveSatellite removes sat if present.
func (p *Planet) RemoveSatellite(sat *Satellite) {
	if sat == nil {
		return
	}
	i := slices.IndexFunc(p.satellites, func(candidate *Satellite) bool { return candidate.id == sat.id })
	if i < 0 {
		return
	}
	p.satellites = slices.Delete(p.satellites, i, i+1)
	delete(p.satelliteIDs, sat.id)
}

// FindSatellite looks a satellite of p up by id, then by name.
func (p *Planet) FindSatellite(query string) (*Satellite, bool) {
	for _, sat := range p.satellites {
		if sat.id == query {
			return sat, true
		}
	}
	for _, sat := range p.satellites {
		if matchesName(sat.name, query) {
			return sat, true
		}
	}
	return nil, false
}

// Orbits reports whether sat is one of p's satellites.
func (p *Planet) Orbits(sat *Satellite) bool {
	if sat == nil {
		return false
	}
	_, ok := p.satelliteIDs[sat.id]
	return ok
}

func (p *Planet) clearSatellites() {
	p.satellites = nil
	clear(p.satelliteIDs)
}

// Names match case-insensitively, ids match exactly.
func matchesName(name, query string) bool {
	return strings.EqualFold(name, query)
}
