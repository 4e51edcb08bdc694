package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medfleet/dispatch/core/capacity"
	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/lifecycle"
	"github.com/medfleet/dispatch/core/logger"
	"github.com/medfleet/dispatch/core/metrics"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/core/scoring"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// Orchestrator drives the end-to-end match: geo query, feasibility filter,
// scoring, reservation and lifecycle advance. A dispatch call runs to
// completion without an internal deadline; caller-side timeouts are layered
// externally.
type Orchestrator struct {
	cfg       Config
	index     *geo.Index
	ledger    *capacity.Ledger
	scorer    *scoring.Scorer
	lifecycle *lifecycle.Store
	bus       eventbus.EventBus
	log       logger.Logger
	sink      metrics.Sink

	mu      sync.Mutex
	history []metrics.AssignmentRecord
	now     func() time.Time
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(cfg Config, index *geo.Index, ledger *capacity.Ledger, scorer *scoring.Scorer, lc *lifecycle.Store, bus eventbus.EventBus, log logger.Logger, sink metrics.Sink) (*Orchestrator, error) {
	if index == nil || ledger == nil || scorer == nil || lc == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewOrchestrator")
	}
	cfg.SetDefaults()
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Orchestrator{
		cfg:       cfg,
		index:     index,
		ledger:    ledger,
		scorer:    scorer,
		lifecycle: lc,
		bus:       bus,
		log:       log,
		sink:      sink,
		now:       time.Now,
	}, nil
}

// SetClock overrides the time source for tests.
func (o *Orchestrator) SetClock(now func() time.Time) { o.now = now }

// Dispatch matches the request to a resource and a receiving facility. The
// candidate list is exhausted once; candidates lost to a concurrent claim
// fall through to the next-ranked one before NoFeasible is declared.
func (o *Orchestrator) Dispatch(req model.MatchRequest) (Result, error) {
	start := o.now()
	radius := req.SearchRadiusKm()

	if err := o.ensureOpen(req); err != nil {
		return Result{}, err
	}

	filter := func(p model.ResourcePosition) bool {
		return p.Availability == model.ResourceAvailable && p.HasAttributes(req.RequiredAttributes)
	}
	candidates, err := o.index.QueryNearestResources(req.Origin, radius, o.cfg.MaxCandidates, filter)
	if err != nil {
		return Result{}, err
	}
	candidatesFound.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		o.log.Infof("request %s: no available resources within %.0f km", req.RequestID, radius)
		return o.finish(req, Result{
			Success: false,
			Outcome: OutcomeNoCandidates,
			Message: fmt.Sprintf("no available resources within %.0f km", radius),
		}, start, len(candidates)), nil
	}

	ranked := o.rankFacilities(req, radius)

	for i, cand := range candidates {
		if err := o.index.Claim(cand.Position.ResourceID); err != nil {
			reservationRaces.Inc()
			o.log.Debugf("request %s: candidate %s raced away: %v", req.RequestID, cand.Position.ResourceID, err)
			continue
		}
		facility, reservation, rest := o.reserveFacility(req, ranked)
		asn := model.Assignment{
			RequestID:               req.RequestID,
			ResourceID:              cand.Position.ResourceID,
			DistanceKm:              cand.DistanceKm,
			EstimatedArrivalMinutes: cand.EstimatedArrivalMinutes,
			DecidedAt:               o.now(),
			Kind:                    model.DecisionAutomatic,
		}
		if facility != nil {
			asn.FacilityID = facility.Facility.FacilityID
			asn.Score = facility.Score
		} else {
			asn.Score = vehicleConfidence(cand.DistanceKm, radius)
		}
		if err := o.advanceLifecycle(req.RequestID, asn, ""); err != nil {
			// Roll back so the resource and bed are not stranded.
			if cerr := o.index.SetAvailability(cand.Position.ResourceID, model.ResourceAvailable); cerr != nil {
				o.log.Errorf("request %s: rollback availability: %v", req.RequestID, cerr)
			}
			if reservation != nil {
				if rerr := o.ledger.Release(*reservation); rerr != nil {
					o.log.Errorf("request %s: rollback reservation: %v", req.RequestID, rerr)
				}
			}
			return Result{}, err
		}
		o.log.Infof("request %s: assigned %s at %.2f km (eta %.1f min)",
			req.RequestID, asn.ResourceID, asn.DistanceKm, asn.EstimatedArrivalMinutes)
		if o.bus != nil {
			o.bus.Publish(events.AssignmentMadeEvent{Assignment: asn})
		}
		res := Result{
			Success:              true,
			Outcome:              OutcomeAssigned,
			Message:              fmt.Sprintf("assigned %s", asn.ResourceID),
			Assignment:           &asn,
			Facility:             facility,
			Alternatives:         alternatives(candidates, i, o.cfg.AlternativeCount),
			FacilityAlternatives: rest,
		}
		return o.finish(req, res, start, len(candidates)), nil
	}

	o.log.Warnf("request %s: %d candidates, none feasible", req.RequestID, len(candidates))
	return o.finish(req, Result{
		Success: false,
		Outcome: OutcomeNoFeasible,
		Message: "all candidate resources were claimed or infeasible",
	}, start, len(candidates)), nil
}

// ManualDispatch assigns the named resource directly, bypassing scoring. The
// operator-supplied reason lands on the request timeline and the assignment
// carries a confidence of 1.
func (o *Orchestrator) ManualDispatch(requestID, resourceID, reason string) (model.Assignment, error) {
	reqState, err := o.lifecycle.Get(requestID)
	if err != nil {
		return model.Assignment{}, err
	}
	pos, ok := o.index.Resource(resourceID)
	if !ok {
		return model.Assignment{}, fmt.Errorf("manual dispatch %s: %w", resourceID, model.ErrResourceUnavailable)
	}
	if err := o.index.Claim(resourceID); err != nil {
		return model.Assignment{}, err
	}

	var distance, eta float64
	if len(reqState.Timeline) > 0 && reqState.Timeline[0].Coordinate != nil {
		distance = geo.DistanceKm(*reqState.Timeline[0].Coordinate, pos.Coordinate)
		eta = o.index.EmergencyETAMinutes(distance)
	}
	asn := model.Assignment{
		RequestID:               requestID,
		ResourceID:              resourceID,
		Score:                   1,
		DistanceKm:              distance,
		EstimatedArrivalMinutes: eta,
		DecidedAt:               o.now(),
		Kind:                    model.DecisionManual,
	}
	if err := o.advanceLifecycle(requestID, asn, reason); err != nil {
		if cerr := o.index.SetAvailability(resourceID, model.ResourceAvailable); cerr != nil {
			o.log.Errorf("request %s: rollback availability: %v", requestID, cerr)
		}
		return model.Assignment{}, err
	}
	manualOverrides.Inc()
	o.log.Infof("request %s: manual override to %s (%s)", requestID, resourceID, reason)
	if o.bus != nil {
		o.bus.Publish(events.AssignmentMadeEvent{Assignment: asn})
	}
	o.record(metrics.AssignmentRecord{
		Assignment: asn,
		Outcome:    OutcomeAssigned,
		Candidates: 1,
		Time:       asn.DecidedAt,
	})
	dispatchOutcomes.WithLabelValues("manual", OutcomeAssigned).Inc()
	return asn, nil
}

// ensureOpen registers the request with the lifecycle store if this is the
// first time the engine sees it.
func (o *Orchestrator) ensureOpen(req model.MatchRequest) error {
	if _, err := o.lifecycle.Get(req.RequestID); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrRequestNotFound) {
		return err
	}
	return o.lifecycle.Open(req.RequestID, req.Origin, req.ConditionText)
}

// rankFacilities pulls nearby facilities, joins them with ledger records and
// scores the feasible ones.
func (o *Orchestrator) rankFacilities(req model.MatchRequest, radius float64) []scoring.RankedFacility {
	facRadius := o.cfg.FacilityRadiusKm
	if facRadius <= 0 {
		facRadius = radius
	}
	requireEmergency := req.Priority == model.PriorityCritical
	cands, err := o.index.QueryNearestFacilities(req.Origin, facRadius, 0, "", requireEmergency)
	if err != nil {
		o.log.Errorf("request %s: facility query: %v", req.RequestID, err)
		return nil
	}
	inputs := make([]scoring.FacilityInput, 0, len(cands))
	for _, c := range cands {
		rec, err := o.ledger.Record(c.Facility.FacilityID)
		if err != nil {
			continue
		}
		inputs = append(inputs, scoring.FacilityInput{
			Facility:   c.Facility,
			Capacity:   rec,
			DistanceKm: c.DistanceKm,
			ETAMinutes: c.EstimatedArrivalMinutes,
		})
	}
	return o.scorer.RankFacilities(req, inputs)
}

// reserveFacility walks the ranked facilities and reserves a bed at the best
// one that still has capacity. Losing a bed to a concurrent reservation falls
// through to the next facility.
func (o *Orchestrator) reserveFacility(req model.MatchRequest, ranked []scoring.RankedFacility) (*scoring.RankedFacility, *capacity.Reservation, []scoring.RankedFacility) {
	class := req.BedClassFor()
	for i := range ranked {
		res, err := o.ledger.Reserve(ranked[i].Facility.FacilityID, class)
		if err != nil {
			if errors.Is(err, model.ErrNoCapacity) {
				reservationRaces.Inc()
				continue
			}
			o.log.Errorf("request %s: reserve at %s: %v", req.RequestID, ranked[i].Facility.FacilityID, err)
			continue
		}
		return &ranked[i], &res, append([]scoring.RankedFacility(nil), ranked[i+1:]...)
	}
	return nil, nil, nil
}

// advanceLifecycle moves a freshly opened request to RESOURCE_ASSIGNED and
// stamps the assignment details on the timeline.
func (o *Orchestrator) advanceLifecycle(requestID string, asn model.Assignment, reason string) error {
	state, err := o.lifecycle.Get(requestID)
	if err != nil {
		return err
	}
	if state.Status == lifecycle.StatusRequested {
		if err := o.lifecycle.Transition(requestID, lifecycle.StatusConfirmed, nil, ""); err != nil {
			return err
		}
	}
	notes := fmt.Sprintf("resource %s, %.2f km, eta %.1f min", asn.ResourceID, asn.DistanceKm, asn.EstimatedArrivalMinutes)
	if asn.Kind == model.DecisionManual {
		notes = fmt.Sprintf("%s; manual override: %s", notes, reason)
	}
	return o.lifecycle.Transition(requestID, lifecycle.StatusResourceAssigned, nil, notes)
}

// finish records metrics and history for a terminal outcome and returns the
// result unchanged.
func (o *Orchestrator) finish(req model.MatchRequest, res Result, start time.Time, candidates int) Result {
	elapsed := o.now().Sub(start)
	matchLatency.Observe(elapsed.Seconds())
	dispatchOutcomes.WithLabelValues(req.Priority.String(), res.Outcome).Inc()
	rec := metrics.AssignmentRecord{
		Priority:   req.Priority,
		Outcome:    res.Outcome,
		Candidates: candidates,
		Elapsed:    elapsed,
		Time:       o.now(),
	}
	if res.Assignment != nil {
		rec.Assignment = *res.Assignment
	}
	o.record(rec)
	if o.bus != nil {
		o.bus.Publish(events.DispatchOutcomeEvent{
			RequestID: req.RequestID,
			Priority:  req.Priority,
			Outcome:   res.Outcome,
		})
	}
	return res
}

func (o *Orchestrator) record(rec metrics.AssignmentRecord) {
	o.mu.Lock()
	o.history = append(o.history, rec)
	o.mu.Unlock()
	if err := o.sink.RecordAssignments([]metrics.AssignmentRecord{rec}); err != nil {
		o.log.Errorf("metrics sink: %v", err)
	}
}

// vehicleConfidence degrades linearly with distance inside the search radius.
func vehicleConfidence(distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 {
		return 0
	}
	c := 1 - distanceKm/radiusKm
	if c < 0 {
		return 0
	}
	return c
}

// alternatives returns up to n candidates ranked after the winner at index i.
func alternatives(cands []geo.ResourceCandidate, i, n int) []geo.ResourceCandidate {
	rest := cands[i+1:]
	if len(rest) > n {
		rest = rest[:n]
	}
	return append([]geo.ResourceCandidate(nil), rest...)
}
