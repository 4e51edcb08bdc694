package events

import "github.com/medfleet/dispatch/core/model"

// CapacityChangedEvent is published after every committed ledger mutation.
type CapacityChangedEvent struct {
	Record model.CapacityRecord
	// Cause is "reserve", "release" or "update".
	Cause string
}
