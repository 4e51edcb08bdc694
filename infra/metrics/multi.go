package metrics

import coremetrics "github.com/medfleet/dispatch/core/metrics"

// MultiSink fans assignment records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignments forwards to all sinks, returning the first error.
func (m *MultiSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignments(recs); err != nil {
			return err
		}
	}
	return nil
}
