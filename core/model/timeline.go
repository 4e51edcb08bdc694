package model

import "time"

// TimelineEntry is one append-only audit record on a request's timeline.
// Entries are never rewritten or removed once appended.
type TimelineEntry struct {
	Status     string      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}
