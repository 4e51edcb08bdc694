package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/medfleet/dispatch/core/model"
)

// Fleet is the set of simulated ambulances sharing one service area.
type Fleet struct {
	units  []*SimulatedAmbulance
	center model.Coordinate
	radius float64
	rng    *rand.Rand
}

// NewFleet scatters cfg.FleetSize ambulances around the configured center.
// Even-numbered units carry ALS equipment, the rest are BLS.
func NewFleet(cfg Config) *Fleet {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	center := model.Coordinate{Lat: cfg.CenterLat, Lon: cfg.CenterLon}
	f := &Fleet{center: center, radius: cfg.RadiusKm, rng: rng}
	for i := 0; i < cfg.FleetSize; i++ {
		attrs := map[string]string{"bls": "true"}
		if i%2 == 0 {
			attrs = map[string]string{"als": "true", "ventilator": "true"}
		}
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * cfg.RadiusKm * 0.5
		f.units = append(f.units, &SimulatedAmbulance{
			ID:         fmt.Sprintf("amb-%02d", i+1),
			Attributes: attrs,
			pos: model.Coordinate{
				Lat: center.Lat + r*math.Sin(angle)/kmPerDegLat,
				Lon: center.Lon + r*math.Cos(angle)/(kmPerDegLon*math.Cos(center.Lat*math.Pi/180)),
			},
			heading:  rng.Float64() * 2 * math.Pi,
			speedKmh: 30 + rng.Float64()*30,
			state:    model.ResourceAvailable,
		})
	}
	return f
}

// Step advances every ambulance by d and returns the fresh position updates.
func (f *Fleet) Step(d time.Duration, now time.Time) []model.ResourcePosition {
	out := make([]model.ResourcePosition, 0, len(f.units))
	for _, a := range f.units {
		a.Step(d, f.center, f.radius, f.rng)
		out = append(out, a.Position(now))
	}
	return out
}
