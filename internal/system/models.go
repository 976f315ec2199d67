package system

import (
	"sync"

	"starsystem-server/internal/body"

	"github.com/google/uuid"
)

// Session is one star system with its own id allocator. mu guards every
// field below it; queries take the read lock, mutations the write lock.
type Session struct {
	ID uuid.UUID

	mu                  sync.RWMutex
	star                *body.Star
	ids                 *body.IDAllocator
	relativePositioning bool
	// deleted is set under mu once the session has been dropped. Callers
	// still holding the pointer see the system as gone.
	deleted bool
}

type CreateSystemRequest struct {
	Name                string  `json:"name"`
	Mass                float64 `json:"mass"`
	RelativePositioning bool    `json:"relative_positioning"`
	Demo                bool    `json:"demo"`
}

type BodyRequest struct {
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type PositioningRequest struct {
	RelativePositioning bool `json:"relative_positioning"`
}

// BodyRef identifies a body in responses.
type BodyRef struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind body.Kind `json:"kind"`
}

type StarView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Mass     float64       `json:"mass"`
	Position body.Position `json:"position"`
}

type PlanetView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Mass       float64         `json:"mass"`
	Position   body.Position   `json:"position"`
	Satellites []SatelliteView `json:"satellites"`
}

// SatelliteView shows Position relative to the orbited planet when the
// system uses relative positioning, absolute otherwise.
type SatelliteView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Mass            float64       `json:"mass"`
	Position        body.Position `json:"position"`
	Relative        bool          `json:"relative"`
	MinStarDistance float64       `json:"min_star_distance"`
	MaxStarDistance float64       `json:"max_star_distance"`
}

type SystemView struct {
	ID                  uuid.UUID    `json:"id"`
	RelativePositioning bool         `json:"relative_positioning"`
	Star                StarView     `json:"star"`
	Planets             []PlanetView `json:"planets"`
}

// BodyDescription answers a find query. OrbitingPlanet is set for
// satellites, Planet for planets and Satellite for satellites.
type BodyDescription struct {
	Kind           body.Kind      `json:"kind"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Mass           float64        `json:"mass"`
	Position       body.Position  `json:"position"`
	Path           string         `json:"path"`
	OrbitingPlanet *BodyRef       `json:"orbiting_planet,omitempty"`
	PlanetCount    *int           `json:"planet_count,omitempty"`
	Planet         *PlanetView    `json:"planet,omitempty"`
	Satellite      *SatelliteView `json:"satellite,omitempty"`
}

type RouteView struct {
	From   BodyRef   `json:"from"`
	To     BodyRef   `json:"to"`
	Hops   []BodyRef `json:"hops"`
	Length float64   `json:"length"`
}

type CollisionView struct {
	Collision bool      `json:"collision"`
	First     []BodyRef `json:"first,omitempty"`
}

type CenterOfMassView struct {
	Position  body.Position `json:"position"`
	TotalMass float64       `json:"total_mass"`
}
