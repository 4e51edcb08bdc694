package main

import (
	"testing"
	"time"

	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
)

func TestFleetStaysInServiceArea(t *testing.T) {
	cfg := Config{FleetSize: 8, RadiusKm: 10, Seed: 42}
	cfg.SetDefaults()
	fleet := NewFleet(cfg)
	center := model.Coordinate{Lat: cfg.CenterLat, Lon: cfg.CenterLon}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		now = now.Add(5 * time.Second)
		positions := fleet.Step(5*time.Second, now)
		if len(positions) != 8 {
			t.Fatalf("expected 8 positions, got %d", len(positions))
		}
		for _, p := range positions {
			if err := p.Coordinate.Validate(); err != nil {
				t.Fatalf("step %d: %s has invalid coordinate: %v", i, p.ResourceID, err)
			}
			// One wander step may overshoot before the unit turns back.
			if d := geo.DistanceKm(center, p.Coordinate); d > cfg.RadiusKm+1 {
				t.Fatalf("step %d: %s drifted %.1f km from center", i, p.ResourceID, d)
			}
			if p.CapturedAt != now {
				t.Fatalf("position not stamped with step time")
			}
		}
	}
}

func TestFleetMixesUnitTypes(t *testing.T) {
	cfg := Config{FleetSize: 6, Seed: 1}
	cfg.SetDefaults()
	fleet := NewFleet(cfg)
	als, bls := 0, 0
	for _, p := range fleet.Step(time.Second, time.Now()) {
		switch {
		case p.Attributes["als"] == "true":
			als++
		case p.Attributes["bls"] == "true":
			bls++
		default:
			t.Fatalf("%s has no unit type attributes", p.ResourceID)
		}
	}
	if als != 3 || bls != 3 {
		t.Fatalf("expected an even split, got %d als / %d bls", als, bls)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.Broker == "" || cfg.FleetSize == 0 || cfg.RadiusKm == 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
