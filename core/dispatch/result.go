package dispatch

import (
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/core/scoring"
)

// Dispatch outcomes. NoCandidates and NoFeasible are structured results, not
// errors: callers present them as "no ambulance available", not as faults.
const (
	OutcomeAssigned     = "assigned"
	OutcomeNoCandidates = "no_candidates"
	OutcomeNoFeasible   = "no_feasible"
)

// Result is the outcome of one dispatch attempt.
type Result struct {
	Success    bool              `json:"success"`
	Outcome    string            `json:"outcome"`
	Message    string            `json:"message,omitempty"`
	Assignment *model.Assignment `json:"assignment,omitempty"`

	// Facility is the recommended receiving facility, when one was feasible.
	Facility *scoring.RankedFacility `json:"facility,omitempty"`

	// Alternatives are the next-ranked resources after the winner, for
	// operator display.
	Alternatives []geo.ResourceCandidate `json:"alternatives,omitempty"`

	// FacilityAlternatives are the remaining scored facilities.
	FacilityAlternatives []scoring.RankedFacility `json:"facility_alternatives,omitempty"`
}
