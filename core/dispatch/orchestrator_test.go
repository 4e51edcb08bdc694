package dispatch

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/medfleet/dispatch/core/capacity"
	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/lifecycle"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/core/scoring"
	"github.com/medfleet/dispatch/internal/eventbus"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (nopLog) Warnf(string, ...any)          {}
func (nopLog) Errorf(string, ...any)         {}

type engine struct {
	orch      *Orchestrator
	index     *geo.Index
	ledger    *capacity.Ledger
	lifecycle *lifecycle.Store
	bus       *eventbus.Bus
	now       time.Time
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	bus := eventbus.New()
	t.Cleanup(bus.Close)
	index := geo.NewIndex(geo.Config{})
	index.SetClock(clock)
	ledger := capacity.NewLedger(bus)
	ledger.SetClock(clock)
	store := lifecycle.NewStore(bus)
	store.SetClock(clock)

	orch, err := NewOrchestrator(Config{}, index, ledger, scoring.NewScorer(scoring.Weights{}), store, bus, nopLog{}, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	orch.SetClock(clock)
	return &engine{orch: orch, index: index, ledger: ledger, lifecycle: store, bus: bus, now: now}
}

func (e *engine) addResource(t *testing.T, id string, lat, lon float64, attrs map[string]string) {
	t.Helper()
	err := e.index.UpsertResourcePosition(model.ResourcePosition{
		ResourceID:   id,
		Coordinate:   model.Coordinate{Lat: lat, Lon: lon},
		CapturedAt:   e.now,
		Availability: model.ResourceAvailable,
		Attributes:   attrs,
	})
	if err != nil {
		t.Fatalf("upsert %s: %v", id, err)
	}
}

func (e *engine) addFacility(t *testing.T, node model.FacilityNode, rec model.CapacityRecord) {
	t.Helper()
	if err := e.index.RegisterFacility(node); err != nil {
		t.Fatalf("register facility %s: %v", node.FacilityID, err)
	}
	rec.FacilityID = node.FacilityID
	rec.LastUpdated = e.now
	if err := e.ledger.Register(rec); err != nil {
		t.Fatalf("register capacity %s: %v", node.FacilityID, err)
	}
}

func TestDispatchAssignsNearestResource(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-close", 28.6140, 77.2090, nil)
	e.addResource(t, "amb-far", 28.70, 77.30, nil)
	e.addFacility(t, model.FacilityNode{
		FacilityID:           "hosp-a",
		Coordinate:           model.Coordinate{Lat: 28.62, Lon: 77.21},
		Specialties:          []string{"cardiology"},
		HasEmergencyServices: true,
		Rating:               4.5,
	}, model.CapacityRecord{
		TotalBeds: 20, AvailableBeds: 10,
		ICUBeds: 4, AvailableICUBeds: 2,
		EmergencyBeds: 6, AvailableEmergencyBeds: 4,
	})

	res, err := e.orch.Dispatch(model.MatchRequest{
		RequestID:     "req-1",
		Origin:        model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:      model.PriorityHigh,
		ConditionText: "chest pain",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Success || res.Outcome != OutcomeAssigned {
		t.Fatalf("expected assignment, got %+v", res)
	}
	if res.Assignment.ResourceID != "amb-close" {
		t.Fatalf("expected nearest resource, got %s", res.Assignment.ResourceID)
	}
	if res.Assignment.FacilityID != "hosp-a" {
		t.Fatalf("expected facility hosp-a, got %q", res.Assignment.FacilityID)
	}
	if res.Assignment.Kind != model.DecisionAutomatic {
		t.Fatalf("expected automatic decision, got %s", res.Assignment.Kind)
	}

	// The winning resource is no longer claimable.
	if err := e.index.Claim("amb-close"); !errors.Is(err, model.ErrResourceUnavailable) {
		t.Fatalf("expected claimed resource to be unavailable, got %v", err)
	}
	// One emergency bed is held for the HIGH request.
	rec, err := e.ledger.Record("hosp-a")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.AvailableEmergencyBeds != 3 {
		t.Fatalf("expected 3 emergency beds left, got %d", rec.AvailableEmergencyBeds)
	}

	state, err := e.lifecycle.Get("req-1")
	if err != nil {
		t.Fatalf("lifecycle Get: %v", err)
	}
	if state.Status != lifecycle.StatusResourceAssigned {
		t.Fatalf("expected RESOURCE_ASSIGNED, got %s", state.Status)
	}
	last := state.Timeline[len(state.Timeline)-1]
	if !strings.Contains(last.Notes, "amb-close") {
		t.Fatalf("timeline notes missing resource id: %q", last.Notes)
	}
}

func TestDispatchNoCandidatesLeavesRequestOpen(t *testing.T) {
	e := newEngine(t)

	res, err := e.orch.Dispatch(model.MatchRequest{
		RequestID: "req-empty",
		Origin:    model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:  model.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Success || res.Outcome != OutcomeNoCandidates {
		t.Fatalf("expected no_candidates, got %+v", res)
	}

	state, err := e.lifecycle.Get("req-empty")
	if err != nil {
		t.Fatalf("lifecycle Get: %v", err)
	}
	if state.Status != lifecycle.StatusRequested {
		t.Fatalf("failed match must leave request at REQUESTED, got %s", state.Status)
	}
}

func TestDispatchFiltersByRequiredAttributes(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-bls", 28.6140, 77.2090, map[string]string{"bls": "true"})
	e.addResource(t, "amb-als", 28.6200, 77.2150, map[string]string{"als": "true", "ventilator": "true"})

	res, err := e.orch.Dispatch(model.MatchRequest{
		RequestID:          "req-attr",
		Origin:             model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:           model.PriorityHigh,
		RequiredAttributes: map[string]string{"ventilator": "true"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected assignment, got %+v", res)
	}
	if res.Assignment.ResourceID != "amb-als" {
		t.Fatalf("closer resource lacks the ventilator, want amb-als got %s", res.Assignment.ResourceID)
	}
}

func TestDispatchCriticalReservesICUBed(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-1", 28.6150, 77.2100, nil)
	// Full house: no emergency or ICU beds free, must be excluded.
	e.addFacility(t, model.FacilityNode{
		FacilityID:           "hosp-full",
		Coordinate:           model.Coordinate{Lat: 28.6145, Lon: 77.2095},
		HasEmergencyServices: true,
	}, model.CapacityRecord{
		TotalBeds: 10, AvailableBeds: 2,
		ICUBeds: 2, AvailableICUBeds: 0,
		EmergencyBeds: 4, AvailableEmergencyBeds: 0,
	})
	e.addFacility(t, model.FacilityNode{
		FacilityID:           "hosp-icu",
		Coordinate:           model.Coordinate{Lat: 28.6300, Lon: 77.2200},
		HasEmergencyServices: true,
	}, model.CapacityRecord{
		TotalBeds: 20, AvailableBeds: 8,
		ICUBeds: 5, AvailableICUBeds: 3,
		EmergencyBeds: 6, AvailableEmergencyBeds: 3,
	})

	res, err := e.orch.Dispatch(model.MatchRequest{
		RequestID: "req-crit",
		Origin:    model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:  model.PriorityCritical,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected assignment, got %+v", res)
	}
	if res.Assignment.FacilityID != "hosp-icu" {
		t.Fatalf("full facility must not receive a critical patient, got %q", res.Assignment.FacilityID)
	}
	rec, err := e.ledger.Record("hosp-icu")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.AvailableICUBeds != 2 {
		t.Fatalf("critical request must hold an ICU bed, got %d available", rec.AvailableICUBeds)
	}
	if rec.AvailableEmergencyBeds != 3 {
		t.Fatalf("emergency pool must be untouched, got %d", rec.AvailableEmergencyBeds)
	}
}

func TestDispatchWithoutFacilityUsesVehicleConfidence(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-solo", 28.6140, 77.2090, nil)

	res, err := e.orch.Dispatch(model.MatchRequest{
		RequestID: "req-nofac",
		Origin:    model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:  model.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected assignment, got %+v", res)
	}
	if res.Assignment.FacilityID != "" {
		t.Fatalf("expected no facility, got %q", res.Assignment.FacilityID)
	}
	if res.Facility != nil {
		t.Fatalf("expected nil ranked facility")
	}
	want := vehicleConfidence(res.Assignment.DistanceKm, model.PriorityHigh.DefaultSearchRadiusKm())
	if res.Assignment.Score != want {
		t.Fatalf("score = %v, want %v", res.Assignment.Score, want)
	}
	if res.Assignment.Score <= 0.99 {
		t.Fatalf("near-origin resource should score close to 1, got %v", res.Assignment.Score)
	}
}

func TestConcurrentDispatchSingleResource(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-only", 28.6140, 77.2090, nil)

	const n = 8
	results := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.orch.Dispatch(model.MatchRequest{
				RequestID: "req-race-" + string(rune('a'+i)),
				Origin:    model.Coordinate{Lat: 28.6139, Lon: 77.2090},
				Priority:  model.PriorityHigh,
			})
		}(i)
	}
	wg.Wait()

	assigned := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("dispatch %d: %v", i, errs[i])
		}
		if results[i].Success {
			assigned++
			if results[i].Assignment.ResourceID != "amb-only" {
				t.Fatalf("unexpected resource %s", results[i].Assignment.ResourceID)
			}
		}
	}
	if assigned != 1 {
		t.Fatalf("one resource must win exactly one request, got %d assignments", assigned)
	}
}

func TestManualDispatchBypassesScoring(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-near", 28.6140, 77.2090, nil)
	e.addResource(t, "amb-pick", 28.6400, 77.2400, nil)

	if err := e.lifecycle.Open("req-man", model.Coordinate{Lat: 28.6139, Lon: 77.2090}, "transfer"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	asn, err := e.orch.ManualDispatch("req-man", "amb-pick", "operator preference")
	if err != nil {
		t.Fatalf("ManualDispatch: %v", err)
	}
	if asn.ResourceID != "amb-pick" {
		t.Fatalf("expected amb-pick, got %s", asn.ResourceID)
	}
	if asn.Kind != model.DecisionManual {
		t.Fatalf("expected manual decision, got %s", asn.Kind)
	}
	if asn.Score != 1 {
		t.Fatalf("manual assignment carries score 1, got %v", asn.Score)
	}
	if asn.DistanceKm <= 0 || asn.EstimatedArrivalMinutes <= 0 {
		t.Fatalf("expected computed distance and eta, got %v km / %v min", asn.DistanceKm, asn.EstimatedArrivalMinutes)
	}

	state, err := e.lifecycle.Get("req-man")
	if err != nil {
		t.Fatalf("lifecycle Get: %v", err)
	}
	if state.Status != lifecycle.StatusResourceAssigned {
		t.Fatalf("expected RESOURCE_ASSIGNED, got %s", state.Status)
	}
	last := state.Timeline[len(state.Timeline)-1]
	if !strings.Contains(last.Notes, "manual override: operator preference") {
		t.Fatalf("timeline missing override reason: %q", last.Notes)
	}
}

func TestManualDispatchUnknownResource(t *testing.T) {
	e := newEngine(t)
	if err := e.lifecycle.Open("req-x", model.Coordinate{Lat: 28.6139, Lon: 77.2090}, ""); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := e.orch.ManualDispatch("req-x", "ghost", "because"); !errors.Is(err, model.ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
}

func TestDispatchPublishesOutcomeEvents(t *testing.T) {
	e := newEngine(t)
	e.addResource(t, "amb-ev", 28.6140, 77.2090, nil)
	outcomes := eventbus.SubscribeTo[events.DispatchOutcomeEvent](e.bus)
	assignments := eventbus.SubscribeTo[events.AssignmentMadeEvent](e.bus)

	if _, err := e.orch.Dispatch(model.MatchRequest{
		RequestID: "req-ev",
		Origin:    model.Coordinate{Lat: 28.6139, Lon: 77.2090},
		Priority:  model.PriorityLow,
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case ev := <-assignments:
		if ev.Assignment.RequestID != "req-ev" {
			t.Fatalf("unexpected assignment event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for assignment event")
	}
	select {
	case ev := <-outcomes:
		if ev.RequestID != "req-ev" || ev.Outcome != OutcomeAssigned {
			t.Fatalf("unexpected outcome event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outcome event")
	}
}
