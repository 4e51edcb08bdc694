package events

import "github.com/medfleet/dispatch/core/model"

// AssignmentMadeEvent is published when a dispatch attempt wins a resource.
type AssignmentMadeEvent struct {
	Assignment model.Assignment
}

// DispatchOutcomeEvent reports the terminal state of one dispatch attempt.
// Outcome is "assigned", "no_candidates" or "no_feasible".
type DispatchOutcomeEvent struct {
	RequestID string
	Priority  model.Priority
	Outcome   string
}
