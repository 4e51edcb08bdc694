package scoring

import (
	"math"
	"testing"

	"github.com/medfleet/dispatch/core/model"
)

func capRec(emergency, icu int) model.CapacityRecord {
	return model.CapacityRecord{
		FacilityID: "hosp-1", TotalBeds: 20, AvailableBeds: 10,
		ICUBeds: 5, AvailableICUBeds: icu,
		EmergencyBeds: 8, AvailableEmergencyBeds: emergency,
	}
}

func TestAcceptsPatientsGate(t *testing.T) {
	cases := []struct {
		name      string
		prio      model.Priority
		emergency int
		icu       int
		want      bool
	}{
		{"critical with icu only", model.PriorityCritical, 0, 1, true},
		{"critical with emergency only", model.PriorityCritical, 1, 0, true},
		{"critical with nothing", model.PriorityCritical, 0, 0, false},
		{"high needs two emergency", model.PriorityHigh, 2, 0, true},
		{"high with one emergency", model.PriorityHigh, 1, 5, false},
		{"low with two emergency", model.PriorityLow, 2, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AcceptsPatients(c.prio, capRec(c.emergency, c.icu)); got != c.want {
				t.Fatalf("got %v want %v", got, c.want)
			}
		})
	}
}

func TestCapacityFactorTiers(t *testing.T) {
	cases := []struct {
		emergency int
		want      float64
	}{
		{3, 1.0},
		{2, 0.8},
		{1, 0.6},
		{0, 0},
	}
	for _, c := range cases {
		if got := capacityFactor(model.PriorityHigh, capRec(c.emergency, 5)); got != c.want {
			t.Errorf("emergency=%d: factor %v want %v", c.emergency, got, c.want)
		}
	}
	// CRITICAL pools on min(emergency, icu); no ICU forces zero.
	if got := capacityFactor(model.PriorityCritical, capRec(5, 0)); got != 0 {
		t.Errorf("critical with no ICU should be 0, got %v", got)
	}
	if got := capacityFactor(model.PriorityCritical, capRec(5, 2)); got != 0.8 {
		t.Errorf("critical min pool 2: factor %v want 0.8", got)
	}
}

func TestScoreFacilityRangeAndExclusion(t *testing.T) {
	s := NewScorer(Weights{})
	req := model.MatchRequest{Priority: model.PriorityHigh, ConditionText: "severe chest pain"}

	in := FacilityInput{
		Facility: model.FacilityNode{
			FacilityID:           "hosp-1",
			Specialties:          []string{"cardiology"},
			HasEmergencyServices: true,
			Rating:               4.5,
		},
		Capacity:   capRec(4, 3),
		DistanceKm: 5,
	}
	score, ok := s.ScoreFacility(req, in)
	if !ok {
		t.Fatal("feasible facility excluded")
	}
	if score <= 0 || score > 1 {
		t.Fatalf("score %v out of (0,1]", score)
	}

	// No feasible bed: excluded entirely, not merely penalized.
	in.Capacity = capRec(0, 0)
	if _, ok := s.ScoreFacility(req, in); ok {
		t.Fatal("infeasible facility not excluded")
	}
	crit := model.MatchRequest{Priority: model.PriorityCritical}
	if _, ok := s.ScoreFacility(crit, in); ok {
		t.Fatal("critical exclusion failed for zero emergency and ICU beds")
	}
}

func TestSpecialtyFactorAffectsScore(t *testing.T) {
	s := NewScorer(DefaultWeights())
	req := model.MatchRequest{Priority: model.PriorityHigh, ConditionText: "stroke symptoms"}
	with := FacilityInput{
		Facility: model.FacilityNode{FacilityID: "a", Specialties: []string{"neurology"}},
		Capacity: capRec(4, 2), DistanceKm: 10,
	}
	without := FacilityInput{
		Facility: model.FacilityNode{FacilityID: "b"},
		Capacity: capRec(4, 2), DistanceKm: 10,
	}
	sw, _ := s.ScoreFacility(req, with)
	so, _ := s.ScoreFacility(req, without)
	if sw <= so {
		t.Fatalf("specialty match should outscore mismatch: %v vs %v", sw, so)
	}
	if math.Abs((sw-so)-0.20) > 1e-9 {
		t.Fatalf("full specialty miss should cost the 0.20 weight, cost %v", sw-so)
	}
}

func TestUnratedQualityDefault(t *testing.T) {
	s := NewScorer(DefaultWeights())
	req := model.MatchRequest{Priority: model.PriorityHigh}
	unrated := FacilityInput{Facility: model.FacilityNode{FacilityID: "a"}, Capacity: capRec(4, 2), DistanceKm: 10}
	rated := unrated
	rated.Facility.Rating = 3.5
	su, _ := s.ScoreFacility(req, unrated)
	sr, _ := s.ScoreFacility(req, rated)
	want := (3.5/5 - 0.7) * 0.15
	if math.Abs((sr-su)-want) > 1e-9 {
		t.Fatalf("quality delta %v, want %v", sr-su, want)
	}
}

func TestRankFacilitiesOrdering(t *testing.T) {
	s := NewScorer(DefaultWeights())
	req := model.MatchRequest{Priority: model.PriorityHigh}
	inputs := []FacilityInput{
		{Facility: model.FacilityNode{FacilityID: "far"}, Capacity: capRec(4, 2), DistanceKm: 40},
		{Facility: model.FacilityNode{FacilityID: "near"}, Capacity: capRec(4, 2), DistanceKm: 2},
		{Facility: model.FacilityNode{FacilityID: "full"}, Capacity: capRec(0, 0), DistanceKm: 1},
	}
	ranked := s.RankFacilities(req, inputs)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 feasible, got %d", len(ranked))
	}
	if ranked[0].Facility.FacilityID != "near" {
		t.Fatalf("closest feasible should rank first, got %s", ranked[0].Facility.FacilityID)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Fatal("ranking not in descending score order")
		}
	}

	// Equal scores break ties by ascending distance.
	tied := []FacilityInput{
		{Facility: model.FacilityNode{FacilityID: "b"}, Capacity: capRec(4, 2), DistanceKm: 60},
		{Facility: model.FacilityNode{FacilityID: "a"}, Capacity: capRec(4, 2), DistanceKm: 55},
	}
	ranked = s.RankFacilities(req, tied)
	if ranked[0].Facility.FacilityID != "a" {
		t.Fatalf("tie-break by distance failed: %s first", ranked[0].Facility.FacilityID)
	}
}

func TestEstimatedWaitMinutes(t *testing.T) {
	if got := EstimatedWaitMinutes(model.PriorityCritical, 0.2); got != 0 {
		t.Errorf("critical low load wait %v, want 0", got)
	}
	if got := EstimatedWaitMinutes(model.PriorityLow, 0.95); got != 90 {
		t.Errorf("low priority high load wait %v, want 90", got)
	}
	if got := EstimatedWaitMinutes(model.PriorityMedium, 0.6); got != 40 {
		t.Errorf("medium priority medium load wait %v, want 40", got)
	}
}
