package mass

import (
	"starsystem-server/internal/body"
	"starsystem-server/internal/shared/errors"
)

// CenterOfMass is the mass-weighted average position of the star, every
// planet and every satellite. A system with zero total mass has no center.
func CenterOfMass(star *body.Star) (body.Position, error) {
	if star == nil {
		return body.Position{}, errors.Validation("star is required")
	}

	var total, sumX, sumY float64
	for _, b := range star.Bodies() {
		m := b.Mass()
		p := b.Position()
		total += m
		sumX += m * p.X
		sumY += m * p.Y
	}

	if total == 0 {
		return body.Position{}, errors.DegenerateSystem("center of mass is undefined for a system with zero total mass")
	}
	return body.NewPosition(sumX/total, sumY/total), nil
}

// Total is the summed mass of every body in the system.
func Total(star *body.Star) float64 {
	var total float64
	for _, b := range star.Bodies() {
		total += b.Mass()
	}
	return total
}
