package dispatch

// Config defines orchestrator settings.
type Config struct {
	// MaxCandidates caps the number of resources pulled from the geo index
	// per attempt.
	MaxCandidates int `json:"max_candidates"`
	// FacilityRadiusKm bounds the receiving-facility search. Zero falls back
	// to the request's resource search radius.
	FacilityRadiusKm float64 `json:"facility_radius_km"`
	// AlternativeCount is the number of runner-up resources reported back.
	AlternativeCount int `json:"alternative_count"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 10
	}
	if c.AlternativeCount <= 0 {
		c.AlternativeCount = 3
	}
}
