package body

import (
	"fmt"
	"math"
	"strings"

	"starsystem-server/internal/shared/errors"
)

// Kind is the closed set of body kinds. Every switch over Kind handles all
// three values.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
	KindSatellite
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindSatellite:
		return "satellite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "star":
		*k = KindStar
	case "planet":
		*k = KindPlanet
	case "satellite":
		*k = KindSatellite
	default:
		return errors.Validationf("unknown body kind %q", text)
	}
	return nil
}

// Body is implemented by *Star, *Planet and *Satellite only.
type Body interface {
	ID() string
	Name() string
	Mass() float64
	Position() Position
	Kind() Kind

	celestialBody() *celestial
}

// celestial holds the attributes shared by every body kind.
type celestial struct {
	id       string
	name     string
	mass     float64
	position Position
}

func (c *celestial) ID() string                { return c.id }
func (c *celestial) Name() string              { return c.name }
func (c *celestial) Mass() float64             { return c.mass }
func (c *celestial) Position() Position        { return c.position }
func (c *celestial) celestialBody() *celestial { return c }

func (c *celestial) String() string {
	return fmt.Sprintf("{ID: %s, Name: %s, Mass: %.2f, Position: %s}", c.id, c.name, c.mass, c.position)
}

// Same reports whether a and b are the same body. Bodies are equal when their
// ids are equal.
func Same(a, b Body) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

func newCelestial(id, name string, mass float64, position Position) (celestial, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return celestial{}, errors.Validation("name is required")
	}
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass < 0 {
		return celestial{}, errors.Validationf("mass of %q must be a non-negative number", name)
	}
	if !position.IsFinite() {
		return celestial{}, errors.Validationf("position of %q must have finite coordinates", name)
	}
	return celestial{id: id, name: name, mass: mass, position: position}, nil
}

const (
	MaxPlanets    = 26000
	MaxSatellites = 5000
)

// Star is the root of a system. It is always at Origin.
type Star struct {
	celestial
	planets   []*Planet
	planetIDs map[string]struct{}
}

func (*Star) Kind() Kind { return KindStar }

// NewStar creates a star at the origin.
func NewStar(ids *IDAllocator, name string, mass float64) (*Star, error) {
	c, err := newCelestial("", name, mass, Origin)
	if err != nil {
		return nil, err
	}
	c.id = ids.NextID()
	return &Star{celestial: c, planetIDs: make(map[string]struct{})}, nil
}

type Planet struct {
	celestial
	satellites   []*Satellite
	satelliteIDs map[string]struct{}
}

func (*Planet) Kind() Kind { return KindPlanet }

func NewPlanet(ids *IDAllocator, name string, mass float64, position Position) (*Planet, error) {
	c, err := newCelestial("", name, mass, position)
	if err != nil {
		return nil, err
	}
	c.id = ids.NextID()
	return &Planet{celestial: c, satelliteIDs: make(map[string]struct{})}, nil
}

// Satellite orbits exactly one planet. Its orbit range is derived once, at
// construction, from the planet position at that moment.
type Satellite struct {
	celestial
	planetID         string
	relativePosition Position
	minStarDistance  float64
	maxStarDistance  float64
}

func (*Satellite) Kind() Kind { return KindSatellite }

// NewSatellite creates a satellite of planet. With relative set, position is
// taken relative to the planet; otherwise it is absolute. Either way both the
// absolute and the relative position are stored.
func NewSatellite(ids *IDAllocator, name string, mass float64, position Position, relative bool, planet *Planet) (*Satellite, error) {
	if planet == nil {
		return nil, errors.Validation("orbiting planet is required")
	}

	absolute, rel := position, position.Subtract(planet.Position())
	if relative {
		absolute, rel = position.Add(planet.Position()), position
	}

	c, err := newCelestial("", name, mass, absolute)
	if err != nil {
		return nil, err
	}
	c.id = ids.NextID()

	minDistance, maxDistance := OrbitRange(planet.Position(), rel)
	return &Satellite{
		celestial:        c,
		planetID:         planet.ID(),
		relativePosition: rel,
		minStarDistance:  minDistance,
		maxStarDistance:  maxDistance,
	}, nil
}

func (s *Satellite) RelativePosition() Position { return s.relativePosition }
func (s *Satellite) MinStarDistance() float64   { return s.minStarDistance }
func (s *Satellite) MaxStarDistance() float64   { return s.maxStarDistance }

// PlanetID is the id of the planet the satellite was built for.
func (s *Satellite) PlanetID() string { return s.planetID }
