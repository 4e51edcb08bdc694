// Package events defines the payloads the engine publishes on the event bus.
//
// Available event types:
//   - CapacityChangedEvent: a facility's bed counts changed
//   - AssignmentMadeEvent: a dispatch attempt produced an assignment
//   - DispatchOutcomeEvent: terminal outcome of a dispatch attempt
//   - StatusChangedEvent: a request lifecycle transition
package events
