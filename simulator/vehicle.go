package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
)

const (
	kmPerDegLat = 110.574
	kmPerDegLon = 111.320
)

// SimulatedAmbulance is one moving unit. It drifts around the service area
// and occasionally flips between available and busy.
type SimulatedAmbulance struct {
	ID         string
	Attributes map[string]string

	pos      model.Coordinate
	heading  float64 // radians
	speedKmh float64
	state    model.AvailabilityState
}

// Step advances the ambulance by d along its heading with some wander. An
// ambulance that leaves the service area turns back toward the center.
func (a *SimulatedAmbulance) Step(d time.Duration, center model.Coordinate, radiusKm float64, rng *rand.Rand) {
	a.heading += (rng.Float64() - 0.5) * math.Pi / 4
	if geo.DistanceKm(center, a.pos) > radiusKm {
		a.heading = math.Atan2(center.Lat-a.pos.Lat, center.Lon-a.pos.Lon)
	}
	dist := a.speedKmh * d.Hours()
	a.pos.Lat += dist * math.Sin(a.heading) / kmPerDegLat
	a.pos.Lon += dist * math.Cos(a.heading) / (kmPerDegLon * math.Cos(a.pos.Lat*math.Pi/180))

	// A unit spends most of its time available; busy stretches are short.
	switch a.state {
	case model.ResourceAvailable:
		if rng.Float64() < 0.05 {
			a.state = model.ResourceBusy
		}
	case model.ResourceBusy:
		if rng.Float64() < 0.3 {
			a.state = model.ResourceAvailable
		}
	}
}

// Position reports the current state as a position update.
func (a *SimulatedAmbulance) Position(now time.Time) model.ResourcePosition {
	return model.ResourcePosition{
		ResourceID:   a.ID,
		Coordinate:   a.pos,
		CapturedAt:   now,
		SpeedKmh:     a.speedKmh,
		Heading:      math.Mod(a.heading*180/math.Pi+360, 360),
		Availability: a.state,
		Attributes:   a.Attributes,
	}
}
