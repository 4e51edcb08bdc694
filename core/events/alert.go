package events

import "time"

// CapacityAlertEvent is raised by the periodic capacity review when a
// facility crosses an alert threshold.
type CapacityAlertEvent struct {
	FacilityID string    `json:"facility_id"`
	Kind       string    `json:"kind"`
	Severity   string    `json:"severity"`
	RaisedAt   time.Time `json:"raised_at"`
}
