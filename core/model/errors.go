package model

import "errors"

// Sentinel errors shared across the engine. Call sites wrap them with
// fmt.Errorf("...: %w", err) to add context; callers test with errors.Is.
var (
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrFacilityNotFound    = errors.New("facility not found")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrNoCapacity          = errors.New("no capacity")
	ErrInvalidReservation  = errors.New("invalid reservation")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrRequestNotFound     = errors.New("request not found")
)
