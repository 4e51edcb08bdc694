package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchOutcomes *prometheus.CounterVec
	matchLatency     prometheus.Histogram
	candidatesFound  prometheus.Histogram
	reservationRaces prometheus.Counter
	manualOverrides  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Histogram, prometheus.Counter, prometheus.Counter) {
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Dispatch attempts by priority and outcome",
		},
		[]string{"priority", "outcome"},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_match_duration_seconds",
			Help:    "Wall time spent matching one request",
			Buckets: prometheus.DefBuckets,
		},
	)
	cand := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_candidates_found",
			Help:    "Resource candidates returned by the geo query per attempt",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)
	races := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_reservation_races_total",
			Help: "Candidates lost to a concurrent claim or reservation",
		},
	)
	manual := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_manual_overrides_total",
			Help: "Assignments decided by operator override",
		},
	)
	return outcomes, lat, cand, races, manual
}

func init() {
	dispatchOutcomes, matchLatency, candidatesFound, reservationRaces, manualOverrides = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchOutcomes, matchLatency, candidatesFound, reservationRaces, manualOverrides)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchOutcomes, matchLatency, candidatesFound, reservationRaces, manualOverrides = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
