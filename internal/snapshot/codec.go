package snapshot

import (
	"fmt"
	"time"

	"starsystem-server/internal/body"
	"starsystem-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Encode captures the hierarchy of star as a document.
func Encode(id uuid.UUID, star *body.Star, relativePositioning bool) *Document {
	planets := star.Planets()
	doc := &Document{
		ID:                  id,
		RelativePositioning: relativePositioning,
		Star: StarRecord{
			ID:      star.ID(),
			Name:    star.Name(),
			Mass:    star.Mass(),
			Planets: make([]PlanetRecord, 0, len(planets)),
		},
		SavedAt: time.Now().UTC(),
	}

	for _, p := range planets {
		satellites := p.Satellites()
		record := PlanetRecord{
			ID:         p.ID(),
			Name:       p.Name(),
			Mass:       p.Mass(),
			Position:   p.Position(),
			Satellites: make([]SatelliteRecord, 0, len(satellites)),
		}
		for _, s := range satellites {
			record.Satellites = append(record.Satellites, SatelliteRecord{
				ID:               s.ID(),
				Name:             s.Name(),
				Mass:             s.Mass(),
				Position:         s.Position(),
				RelativePosition: s.RelativePosition(),
				MinStarDistance:  s.MinStarDistance(),
				MaxStarDistance:  s.MaxStarDistance(),
			})
		}
		doc.Star.Planets = append(doc.Star.Planets, record)
	}

	return doc
}

// Decode rebuilds the hierarchy stored in doc. Every restored id is reported
// to ids, so later allocations never collide with it.
func Decode(doc *Document, ids *body.IDAllocator) (*body.Star, error) {
	star, err := body.RestoreStar(ids, doc.Star.ID, doc.Star.Name, doc.Star.Mass)
	if err != nil {
		return nil, fmt.Errorf("failed to restore star: %w", err)
	}

	seen := map[string]struct{}{star.ID(): {}}
	unique := func(id string) error {
		if _, dup := seen[id]; dup {
			return errors.Validationf("snapshot %s reuses body id %s", doc.ID, id)
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, pr := range doc.Star.Planets {
		if err := unique(pr.ID); err != nil {
			return nil, err
		}
		planet, err := body.RestorePlanet(ids, pr.ID, pr.Name, pr.Mass, pr.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to restore planet %s: %w", pr.ID, err)
		}

		for _, sr := range pr.Satellites {
			if err := unique(sr.ID); err != nil {
				return nil, err
			}
			sat, err := body.RestoreSatellite(ids, sr.ID, sr.Name, sr.Mass, sr.Position, sr.RelativePosition,
				sr.MinStarDistance, sr.MaxStarDistance, planet)
			if err != nil {
				return nil, fmt.Errorf("failed to restore satellite %s: %w", sr.ID, err)
			}
			if err := planet.AddSatellite(sat); err != nil {
				return nil, fmt.Errorf("failed to attach satellite %s: %w", sr.ID, err)
			}
		}

		if err := star.AddPlanet(planet); err != nil {
			return nil, fmt.Errorf("failed to attach planet %s: %w", pr.ID, err)
		}
	}

	return star, nil
}
