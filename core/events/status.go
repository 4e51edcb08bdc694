package events

import "github.com/medfleet/dispatch/core/model"

// StatusChangedEvent is published for every request lifecycle transition.
type StatusChangedEvent struct {
	RequestID string
	Previous  string
	Entry     model.TimelineEntry
}
