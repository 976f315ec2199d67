package system

import (
	"starsystem-server/internal/body"
)

type demoSatellite struct {
	name string
	mass float64
	x, y float64
}

type demoPlanet struct {
	name       string
	mass       float64
	x, y       float64
	satellites []demoSatellite
}

const (
	demoStarName = "Sole"
	demoStarMass = 30
)

// Satellite positions are absolute.
var demoPlanets = []demoPlanet{
	{name: "Pianeta1", mass: 5, x: 0, y: -3, satellites: []demoSatellite{
		{name: "Luna1", mass: 1, x: -1, y: -4},
	}},
	{name: "Pianeta2", mass: 7, x: 3, y: 3, satellites: []demoSatellite{
		{name: "Luna2", mass: 2, x: 2, y: 3},
		{name: "Luna3", mass: 1, x: 4, y: 4},
	}},
}

// buildDemo creates the sample system used to try the server out.
func buildDemo(ids *body.IDAllocator) (*body.Star, error) {
	star, err := body.NewStar(ids, demoStarName, demoStarMass)
	if err != nil {
		return nil, err
	}

	for _, dp := range demoPlanets {
		planet, err := body.NewPlanet(ids, dp.name, dp.mass, body.NewPosition(dp.x, dp.y))
		if err != nil {
			return nil, err
		}
		for _, ds := range dp.satellites {
			sat, err := body.NewSatellite(ids, ds.name, ds.mass, body.NewPosition(ds.x, ds.y), false, planet)
			if err != nil {
				return nil, err
			}
			if err := planet.AddSatellite(sat); err != nil {
				return nil, err
			}
		}
		if err := star.AddPlanet(planet); err != nil {
			return nil, err
		}
	}
	return star, nil
}
