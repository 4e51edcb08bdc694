package scoring

import (
	"sort"

	"github.com/medfleet/dispatch/core/model"
)

// Weights defines the facility suitability factors. They should sum to 1 so
// scores stay in [0,1].
type Weights struct {
	Distance  float64 `json:"distance"`
	Capacity  float64 `json:"capacity"`
	Specialty float64 `json:"specialty"`
	Quality   float64 `json:"quality"`
	Load      float64 `json:"load"`

	// MaxDistanceKm normalizes the distance factor: a facility this far away
	// scores zero on distance.
	MaxDistanceKm float64 `json:"max_distance_km"`
}

// DefaultWeights returns the standard factor weighting.
func DefaultWeights() Weights {
	return Weights{
		Distance:      0.30,
		Capacity:      0.25,
		Specialty:     0.20,
		Quality:       0.15,
		Load:          0.10,
		MaxDistanceKm: 50,
	}
}

// defaultQuality is the quality factor assumed for unrated facilities.
const defaultQuality = 0.7

// FacilityInput bundles everything the scorer needs for one candidate.
type FacilityInput struct {
	Facility   model.FacilityNode
	Capacity   model.CapacityRecord
	DistanceKm float64
	ETAMinutes float64
}

// RankedFacility is one scored candidate.
type RankedFacility struct {
	FacilityInput
	Score                float64
	EstimatedWaitMinutes float64
}

// Scorer converts candidate attributes into a comparable suitability score.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer; zero-valued weights fall back to the defaults.
func NewScorer(w Weights) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if w.MaxDistanceKm <= 0 {
		w.MaxDistanceKm = 50
	}
	return &Scorer{weights: w}
}

// AcceptsPatients is the feasibility gate evaluated before scoring. CRITICAL
// requests need any emergency or ICU bed; everything else needs at least two
// emergency beds free.
func AcceptsPatients(priority model.Priority, rec model.CapacityRecord) bool {
	if priority == model.PriorityCritical {
		return rec.AvailableEmergencyBeds > 0 || rec.AvailableICUBeds > 0
	}
	return rec.AvailableEmergencyBeds >= 2
}

// capacityFactor returns the tiered capacity factor for one required bed.
// For CRITICAL the relevant pool is min(emergency, icu) and zero ICU beds
// force a zero factor.
func capacityFactor(priority model.Priority, rec model.CapacityRecord) float64 {
	const required = 1
	pool := rec.AvailableEmergencyBeds
	if priority == model.PriorityCritical {
		if rec.AvailableICUBeds == 0 {
			return 0
		}
		pool = rec.AvailableEmergencyBeds
		if rec.AvailableICUBeds < pool {
			pool = rec.AvailableICUBeds
		}
	}
	switch {
	case pool >= required+2:
		return 1.0
	case pool >= required+1:
		return 0.8
	case pool >= required:
		return 0.6
	default:
		return 0
	}
}

// specialtyFactor returns the fraction of required specialties the facility
// offers, 1 when nothing is required.
func specialtyFactor(required []string, f model.FacilityNode) float64 {
	if len(required) == 0 {
		return 1
	}
	matched := 0
	for _, s := range required {
		if f.HasSpecialty(s) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// ScoreFacility computes the suitability score for one candidate. The second
// return value is false when the facility is infeasible and must be excluded
// from recommendations entirely.
func (s *Scorer) ScoreFacility(req model.MatchRequest, in FacilityInput) (float64, bool) {
	if !AcceptsPatients(req.Priority, in.Capacity) {
		return 0, false
	}
	capFactor := capacityFactor(req.Priority, in.Capacity)
	if capFactor == 0 {
		return 0, false
	}

	distFactor := 1 - in.DistanceKm/s.weights.MaxDistanceKm
	if distFactor < 0 {
		distFactor = 0
	}
	quality := defaultQuality
	if in.Facility.Rating > 0 {
		quality = in.Facility.Rating / 5
	}
	required := InferSpecialties(req.ConditionText, req.RequiredSpecialties)

	score := distFactor*s.weights.Distance +
		capFactor*s.weights.Capacity +
		specialtyFactor(required, in.Facility)*s.weights.Specialty +
		quality*s.weights.Quality +
		(1-in.Capacity.OccupancyRate())*s.weights.Load
	return score, true
}

// RankFacilities scores the candidates and returns the feasible ones in
// descending score order, ties broken by ascending distance.
func (s *Scorer) RankFacilities(req model.MatchRequest, inputs []FacilityInput) []RankedFacility {
	var out []RankedFacility
	for _, in := range inputs {
		score, ok := s.ScoreFacility(req, in)
		if !ok {
			continue
		}
		out = append(out, RankedFacility{
			FacilityInput:        in,
			Score:                score,
			EstimatedWaitMinutes: EstimatedWaitMinutes(req.Priority, in.Capacity.OccupancyRate()),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
