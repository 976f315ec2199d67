package route

import (
	"starsystem-server/internal/body"
	"starsystem-server/internal/shared/errors"
)

// maxDepth bounds the ancestor chain: satellite, planet, star.
const maxDepth = 3

// Plan returns the hop route from start to finish, both inclusive. The route
// climbs from start to the lowest common ancestor of the two bodies (the star,
// or the planet two satellites share) and descends to finish. Both bodies must
// belong to star's hierarchy.
func Plan(star *body.Star, start, finish body.Body) ([]body.Body, error) {
	if star == nil {
		return nil, errors.Validation("star is required")
	}
	for _, b := range []body.Body{start, finish} {
		if b == nil {
			return nil, errors.Validation("route endpoints are required")
		}
		if !star.Contains(b) {
			return nil, errors.NotFoundf("%s %s is not part of the system of %s", b.Kind(), b.ID(), star.Name())
		}
	}

	if body.Same(start, finish) {
		return []body.Body{start}, nil
	}

	up := ancestors(star, start)
	down := ancestors(star, finish)

	// Both chains end at the star. Walk back while they still agree; up[i]
	// and down[j] are then the lowest common ancestor.
	i, j := len(up)-1, len(down)-1
	for i > 0 && j > 0 && body.Same(up[i-1], down[j-1]) {
		i--
		j--
	}

	route := make([]body.Body, 0, i+j+1)
	route = append(route, up[:i+1]...)
	for k := j - 1; k >= 0; k-- {
		route = append(route, down[k])
	}
	return route, nil
}

// Length sums the straight-line distance of every hop.
func Length(route []body.Body) float64 {
	var length float64
	for i := 1; i < len(route); i++ {
		length += route[i-1].Position().Distance(route[i].Position())
	}
	return length
}

// ancestors returns b followed by each parent up to and including the star.
func ancestors(star *body.Star, b body.Body) []body.Body {
	chain := []body.Body{b}
	for len(chain) < maxDepth && chain[len(chain)-1].Kind() != body.KindStar {
		chain = append(chain, parent(star, chain[len(chain)-1]))
	}
	return chain
}

// parent is the planet a satellite orbits, found by scanning every planet,
// or the star for anything else.
func parent(star *body.Star, b body.Body) body.Body {
	switch b.Kind() {
	case body.KindStar, body.KindPlanet:
		return star
	case body.KindSatellite:
		if p, ok := star.OrbitingPlanet(b.(*body.Satellite)); ok {
			return p
		}
		return star
	default:
		return star
	}
}
