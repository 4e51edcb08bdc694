package model

import "time"

// DecisionKind distinguishes automatic matching from operator overrides.
type DecisionKind int

const (
	DecisionAutomatic DecisionKind = iota
	DecisionManual
)

// String returns a human-readable representation of the decision kind.
func (k DecisionKind) String() string {
	if k == DecisionManual {
		return "MANUAL"
	}
	return "AUTOMATIC"
}

// Assignment records one successful match decision. It is produced exactly
// once per successful attempt and never mutated afterwards.
type Assignment struct {
	RequestID               string       `json:"request_id"`
	ResourceID              string       `json:"resource_id"`
	FacilityID              string       `json:"facility_id,omitempty"`
	Score                   float64      `json:"score"`
	DistanceKm              float64      `json:"distance_km"`
	EstimatedArrivalMinutes float64      `json:"estimated_arrival_minutes"`
	DecidedAt               time.Time    `json:"decided_at"`
	Kind                    DecisionKind `json:"kind"`
}
