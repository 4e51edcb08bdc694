package metrics

import (
	"time"

	"github.com/medfleet/dispatch/core/model"
)

// AssignmentRecord is one dispatch decision to be recorded for observability.
type AssignmentRecord struct {
	Assignment model.Assignment
	Priority   model.Priority
	Outcome    string
	Candidates int
	Elapsed    time.Duration
	Time       time.Time
}

// Sink records assignment results for observability purposes.
type Sink interface {
	RecordAssignments(records []AssignmentRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignments([]AssignmentRecord) error { return nil }
