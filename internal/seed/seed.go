// Package seed provides deterministic demo fixtures for the CLI and tests.
// It is fixture logic only and not part of the engine contract.
package seed

import (
	"fmt"
	"time"

	"github.com/medfleet/dispatch/core/capacity"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
)

// center is the demo service area origin (central New Delhi).
var center = model.Coordinate{Lat: 28.6139, Lon: 77.209}

// Fleet returns n ambulances fanned out on a fixed grid around the demo
// center, all reporting fresh, available positions.
func Fleet(n int, now time.Time) []model.ResourcePosition {
	out := make([]model.ResourcePosition, 0, n)
	for i := 0; i < n; i++ {
		attrs := map[string]string{"bls": "true"}
		if i%3 == 0 {
			attrs["als"] = "true"
		}
		out = append(out, model.ResourcePosition{
			ResourceID: fmt.Sprintf("amb-%02d", i+1),
			Coordinate: model.Coordinate{
				Lat: center.Lat + float64(i%5)*0.01,
				Lon: center.Lon + float64(i/5)*0.01,
			},
			CapturedAt:   now,
			Availability: model.ResourceAvailable,
			Attributes:   attrs,
		})
	}
	return out
}

// Facilities returns a small hospital set with varied specialties and bed
// pools.
func Facilities() ([]model.FacilityNode, []model.CapacityRecord) {
	nodes := []model.FacilityNode{
		{
			FacilityID:           "hosp-general",
			Coordinate:           model.Coordinate{Lat: 28.63, Lon: 77.22},
			Specialties:          []string{"cardiology", "trauma surgery"},
			HasEmergencyServices: true,
			Rating:               4.2,
		},
		{
			FacilityID:           "hosp-childrens",
			Coordinate:           model.Coordinate{Lat: 28.60, Lon: 77.19},
			Specialties:          []string{"pediatrics", "obstetrics"},
			HasEmergencyServices: true,
			Rating:               4.6,
		},
		{
			FacilityID:  "hosp-clinic",
			Coordinate:  model.Coordinate{Lat: 28.59, Lon: 77.23},
			Specialties: []string{"neurology"},
		},
	}
	records := []model.CapacityRecord{
		{
			FacilityID: "hosp-general", TotalBeds: 120, AvailableBeds: 45,
			ICUBeds: 12, AvailableICUBeds: 3,
			EmergencyBeds: 20, AvailableEmergencyBeds: 8,
		},
		{
			FacilityID: "hosp-childrens", TotalBeds: 80, AvailableBeds: 30,
			ICUBeds: 8, AvailableICUBeds: 2,
			EmergencyBeds: 12, AvailableEmergencyBeds: 5,
		},
		{
			FacilityID: "hosp-clinic", TotalBeds: 40, AvailableBeds: 10,
			ICUBeds: 2, AvailableICUBeds: 0,
			EmergencyBeds: 6, AvailableEmergencyBeds: 2,
		},
	}
	return nodes, records
}

// Apply loads the demo fixtures into the index and ledger.
func Apply(index *geo.Index, ledger *capacity.Ledger, fleetSize int, now time.Time) error {
	for _, p := range Fleet(fleetSize, now) {
		if err := index.UpsertResourcePosition(p); err != nil {
			return err
		}
	}
	nodes, records := Facilities()
	for _, f := range nodes {
		if err := index.RegisterFacility(f); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := ledger.Register(rec); err != nil {
			return err
		}
	}
	return nil
}
