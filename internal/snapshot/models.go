package snapshot

import (
	"time"

	"starsystem-server/internal/body"

	"github.com/google/uuid"
)

// Document is the persisted form of one star system session. Satellites keep
// their stored orbit range so restoring never derives it again.
type Document struct {
	ID                  uuid.UUID  `json:"id"`
	RelativePositioning bool       `json:"relative_positioning"`
	Star                StarRecord `json:"star"`
	SavedAt             time.Time  `json:"saved_at"`
}

type StarRecord struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Mass    float64        `json:"mass"`
	Planets []PlanetRecord `json:"planets"`
}

type PlanetRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Mass       float64           `json:"mass"`
	Position   body.Position     `json:"position"`
	Satellites []SatelliteRecord `json:"satellites"`
}

type SatelliteRecord struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Mass             float64       `json:"mass"`
	Position         body.Position `json:"position"`
	RelativePosition body.Position `json:"relative_position"`
	MinStarDistance  float64       `json:"min_star_distance"`
	MaxStarDistance  float64       `json:"max_star_distance"`
}
