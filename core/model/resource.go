package model

import "time"

// AvailabilityState describes whether a transport resource can take a request.
type AvailabilityState int

const (
	ResourceAvailable AvailabilityState = iota
	ResourceDispatched
	ResourceBusy
	ResourceOutOfService
)

// String returns a human-readable representation of the availability state.
func (s AvailabilityState) String() string {
	switch s {
	case ResourceAvailable:
		return "available"
	case ResourceDispatched:
		return "dispatched"
	case ResourceBusy:
		return "busy"
	case ResourceOutOfService:
		return "out_of_service"
	default:
		return "unknown"
	}
}

// ResourcePosition is the last reported state of a mobile transport resource.
// Reports are last-write-wins per resource; no history is kept beyond the
// CapturedAt timestamp used for staleness checks.
type ResourcePosition struct {
	ResourceID   string            `json:"resource_id"`
	Coordinate   Coordinate        `json:"coordinate"`
	CapturedAt   time.Time         `json:"captured_at"`
	AccuracyM    float64           `json:"accuracy_m,omitempty"`
	Heading      float64           `json:"heading,omitempty"`
	SpeedKmh     float64           `json:"speed_kmh,omitempty"`
	Availability AvailabilityState `json:"availability"`

	// Attributes carries equipment and crew capabilities matched against a
	// request's RequiredAttributes (e.g. "als":"true", "ventilator":"true").
	Attributes map[string]string `json:"attributes,omitempty"`
}

// HasAttributes reports whether the position carries every required attribute
// with the exact value. An empty requirement always matches.
func (p ResourcePosition) HasAttributes(required map[string]string) bool {
	for k, v := range required {
		if p.Attributes[k] != v {
			return false
		}
	}
	return true
}
