package model

import (
	"fmt"
	"time"
)

// FacilityNode is a static receiving facility. Location and attributes are
// immutable after registration; bed counts live in the capacity ledger keyed
// by the same id.
type FacilityNode struct {
	FacilityID           string     `json:"facility_id"`
	Coordinate           Coordinate `json:"coordinate"`
	Specialties          []string   `json:"specialties,omitempty"`
	HasEmergencyServices bool       `json:"has_emergency_services"`

	// Rating is the facility quality rating on a 0-5 scale, 0 when unrated.
	Rating float64 `json:"rating,omitempty"`
}

// HasSpecialty reports whether the facility offers the named specialty.
func (f FacilityNode) HasSpecialty(name string) bool {
	for _, s := range f.Specialties {
		if s == name {
			return true
		}
	}
	return false
}

// BedClass identifies one of the independently tracked capacity pools.
type BedClass int

const (
	BedGeneral BedClass = iota
	BedICU
	BedEmergency
)

// String returns a human-readable representation of the bed class.
func (c BedClass) String() string {
	switch c {
	case BedGeneral:
		return "general"
	case BedICU:
		return "icu"
	case BedEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// CapacityRecord tracks bed counts for one facility.
type CapacityRecord struct {
	FacilityID             string    `json:"facility_id"`
	TotalBeds              int       `json:"total_beds"`
	AvailableBeds          int       `json:"available_beds"`
	ICUBeds                int       `json:"icu_beds"`
	AvailableICUBeds       int       `json:"available_icu_beds"`
	EmergencyBeds          int       `json:"emergency_beds"`
	AvailableEmergencyBeds int       `json:"available_emergency_beds"`
	LastUpdated            time.Time `json:"last_updated"`
}

// Available returns the available count for the given bed class.
func (r CapacityRecord) Available(c BedClass) int {
	switch c {
	case BedICU:
		return r.AvailableICUBeds
	case BedEmergency:
		return r.AvailableEmergencyBeds
	default:
		return r.AvailableBeds
	}
}

// Total returns the total count for the given bed class.
func (r CapacityRecord) Total(c BedClass) int {
	switch c {
	case BedICU:
		return r.ICUBeds
	case BedEmergency:
		return r.EmergencyBeds
	default:
		return r.TotalBeds
	}
}

// OccupancyRate returns (total-available)/total over all beds, 0 when the
// facility has no beds registered.
func (r CapacityRecord) OccupancyRate() float64 {
	if r.TotalBeds == 0 {
		return 0
	}
	return float64(r.TotalBeds-r.AvailableBeds) / float64(r.TotalBeds)
}

// Validate checks the per-class invariant 0 <= available <= total.
func (r CapacityRecord) Validate() error {
	for _, c := range []BedClass{BedGeneral, BedICU, BedEmergency} {
		if r.Available(c) < 0 || r.Available(c) > r.Total(c) {
			return fmt.Errorf("capacity record %s: %s beds out of range (%d/%d)",
				r.FacilityID, c, r.Available(c), r.Total(c))
		}
	}
	return nil
}
