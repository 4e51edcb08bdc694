package model

// Priority classifies the urgency of a transport request.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	case PriorityCritical:
		return "CRITICAL"
	default:
		return "unknown"
	}
}

// DefaultSearchRadiusKm returns the default candidate search radius for the
// priority. The radius bounds the geo query, it is not a response-time SLA.
func (p Priority) DefaultSearchRadiusKm() float64 {
	switch p {
	case PriorityCritical:
		return 100
	case PriorityHigh:
		return 50
	case PriorityMedium:
		return 30
	default:
		return 20
	}
}

// MatchRequest describes one transport request to be matched. It exists only
// for the duration of a single dispatch call and is not persisted by the
// engine.
type MatchRequest struct {
	RequestID           string            `json:"request_id"`
	Origin              Coordinate        `json:"origin"`
	Priority            Priority          `json:"priority"`
	RequiredAttributes  map[string]string `json:"required_attributes,omitempty"`
	RequiredSpecialties []string          `json:"required_specialties,omitempty"`
	ConditionText       string            `json:"condition_text,omitempty"`

	// MaxDistanceKm overrides the priority default search radius when > 0.
	MaxDistanceKm float64 `json:"max_distance_km,omitempty"`
}

// SearchRadiusKm returns the effective candidate search radius.
func (r MatchRequest) SearchRadiusKm() float64 {
	if r.MaxDistanceKm > 0 {
		return r.MaxDistanceKm
	}
	return r.Priority.DefaultSearchRadiusKm()
}

// BedClassFor returns the bed class a request of this priority reserves.
// CRITICAL transports occupy an ICU bed, everything else an emergency bed.
func (r MatchRequest) BedClassFor() BedClass {
	if r.Priority == PriorityCritical {
		return BedICU
	}
	return BedEmergency
}
