package scheduler

// Package scheduler runs the periodic capacity review. Each pass aggregates
// the ledger's occupancy analytics and raises alert events for facilities
// that crossed a threshold, so downstream consumers see degradation before
// a dispatch fails for lack of beds.
