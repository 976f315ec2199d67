package body

import (
	"math"

	"starsystem-server/internal/shared/errors"
)

// The Restore constructors rebuild bodies from persisted state. They keep the
// stored id and, for satellites, the stored orbit range instead of deriving it
// again. Every restored id is reported to ids so it cannot be reissued.

func RestoreStar(ids *IDAllocator, id, name string, mass float64) (*Star, error) {
	c, err := restoreCelestial(ids, id, name, mass, Origin)
	if err != nil {
		return nil, err
	}
	return &Star{celestial: c, planetIDs: make(map[string]struct{})}, nil
}

func RestorePlanet(ids *IDAllocator, id, name string, mass float64, position Position) (*Planet, error) {
	c, err := restoreCelestial(ids, id, name, mass, position)
	if err != nil {
		return nil, err
	}
	return &Planet{celestial: c, satelliteIDs: make(map[string]struct{})}, nil
}

func RestoreSatellite(ids *IDAllocator, id, name string, mass float64, position, relativePosition Position, minStarDistance, maxStarDistance float64, planet *Planet) (*Satellite, error) {
	if planet == nil {
		return nil, errors.Validation("orbiting planet is required")
	}
	if math.IsNaN(minStarDistance) || math.IsNaN(maxStarDistance) || minStarDistance > maxStarDistance {
		return nil, errors.Validationf("satellite %s has an invalid orbit range [%v, %v]", id, minStarDistance, maxStarDistance)
	}
	c, err := restoreCelestial(ids, id, name, mass, position)
	if err != nil {
		return nil, err
	}
	return &Satellite{
		celestial:        c,
		planetID:         planet.ID(),
		relativePosition: relativePosition,
		minStarDistance:  minStarDistance,
		maxStarDistance:  maxStarDistance,
	}, nil
}

func restoreCelestial(ids *IDAllocator, id, name string, mass float64, position Position) (celestial, error) {
	if _, ok := parseID(id); !ok {
		return celestial{}, errors.Validationf("invalid body id %q", id)
	}
	c, err := newCelestial(id, name, mass, position)
	if err != nil {
		return celestial{}, err
	}
	ids.Observe(id)
	return c, nil
}
