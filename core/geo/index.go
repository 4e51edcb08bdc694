package geo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/medfleet/dispatch/core/model"
)

// ResourceCandidate is one mobile resource returned by a nearest query.
type ResourceCandidate struct {
	Position                model.ResourcePosition
	DistanceKm              float64
	EstimatedArrivalMinutes float64
}

// FacilityCandidate is one facility returned by a nearest query.
type FacilityCandidate struct {
	Facility                model.FacilityNode
	DistanceKm              float64
	EstimatedArrivalMinutes float64
}

// ResourceFilter prunes candidates before distance ranking. A nil filter
// accepts everything.
type ResourceFilter func(model.ResourcePosition) bool

// Index answers nearest-neighbour queries over mobile resource positions and
// static facility nodes. Positions are last-write-wins per resource; one
// resource's write never blocks another resource's read beyond the shared
// map lock held for the single assignment.
type Index struct {
	cfg Config
	now func() time.Time

	mu         sync.RWMutex
	positions  map[string]model.ResourcePosition
	facilities map[string]model.FacilityNode
}

// NewIndex creates an empty index with the given travel-time configuration.
func NewIndex(cfg Config) *Index {
	cfg.SetDefaults()
	return &Index{
		cfg:        cfg,
		now:        time.Now,
		positions:  make(map[string]model.ResourcePosition),
		facilities: make(map[string]model.FacilityNode),
	}
}

// SetClock overrides the time source, used by tests to control staleness.
func (ix *Index) SetClock(now func() time.Time) { ix.now = now }

// EmergencyETAMinutes estimates travel time for the distance at the
// configured emergency vehicle speed.
func (ix *Index) EmergencyETAMinutes(distanceKm float64) float64 {
	return TravelMinutes(distanceKm, ix.cfg.EmergencySpeedKmh)
}

// UpsertResourcePosition replaces the stored position for the resource.
func (ix *Index) UpsertResourcePosition(pos model.ResourcePosition) error {
	if err := pos.Coordinate.Validate(); err != nil {
		return fmt.Errorf("upsert position %s: %w", pos.ResourceID, err)
	}
	ix.mu.Lock()
	ix.positions[pos.ResourceID] = pos
	ix.mu.Unlock()
	return nil
}

// RegisterFacility adds or replaces a facility node.
func (ix *Index) RegisterFacility(f model.FacilityNode) error {
	if err := f.Coordinate.Validate(); err != nil {
		return fmt.Errorf("register facility %s: %w", f.FacilityID, err)
	}
	ix.mu.Lock()
	ix.facilities[f.FacilityID] = f
	ix.mu.Unlock()
	return nil
}

// Resource returns the stored position for the id.
func (ix *Index) Resource(id string) (model.ResourcePosition, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	p, ok := ix.positions[id]
	return p, ok
}

// Facility returns the stored facility node for the id.
func (ix *Index) Facility(id string) (model.FacilityNode, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	f, ok := ix.facilities[id]
	return f, ok
}

// SetAvailability updates the availability state of a known resource.
func (ix *Index) SetAvailability(id string, state model.AvailabilityState) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	p, ok := ix.positions[id]
	if !ok {
		return fmt.Errorf("set availability %s: %w", id, model.ErrResourceUnavailable)
	}
	p.Availability = state
	ix.positions[id] = p
	return nil
}

// Claim atomically moves an available resource to dispatched. Concurrent
// claims for the same resource serialize on the index lock, so exactly one
// caller wins; the rest observe ErrResourceUnavailable.
func (ix *Index) Claim(id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	p, ok := ix.positions[id]
	if !ok || p.Availability != model.ResourceAvailable {
		return fmt.Errorf("claim %s: %w", id, model.ErrResourceUnavailable)
	}
	if ix.now().Sub(p.CapturedAt) > ix.cfg.pointFreshness() {
		return fmt.Errorf("claim %s: stale position: %w", id, model.ErrResourceUnavailable)
	}
	p.Availability = model.ResourceDispatched
	ix.positions[id] = p
	return nil
}

// QueryNearestResources returns non-stale, filter-matching resources within
// radiusKm of center, ascending by distance and truncated to maxResults.
// Equal distances order by resource id to keep results deterministic. An
// empty result is valid, not an error.
func (ix *Index) QueryNearestResources(center model.Coordinate, radiusKm float64, maxResults int, filter ResourceFilter) ([]ResourceCandidate, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	cutoff := ix.now().Add(-ix.cfg.pointFreshness())

	ix.mu.RLock()
	var out []ResourceCandidate
	for _, p := range ix.positions {
		if p.CapturedAt.Before(cutoff) {
			continue
		}
		if filter != nil && !filter(p) {
			continue
		}
		d := DistanceKm(center, p.Coordinate)
		if d > radiusKm {
			continue
		}
		out = append(out, ResourceCandidate{
			Position:                p,
			DistanceKm:              d,
			EstimatedArrivalMinutes: TravelMinutes(d, ix.cfg.EmergencySpeedKmh),
		})
	}
	ix.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Position.ResourceID < out[j].Position.ResourceID
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// QueryNearestFacilities returns facilities within radiusKm of center,
// optionally restricted to a specialty or to facilities with emergency
// services, ascending by distance and truncated to maxResults.
func (ix *Index) QueryNearestFacilities(center model.Coordinate, radiusKm float64, maxResults int, requireSpecialty string, requireEmergency bool) ([]FacilityCandidate, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}

	ix.mu.RLock()
	var out []FacilityCandidate
	for _, f := range ix.facilities {
		if requireEmergency && !f.HasEmergencyServices {
			continue
		}
		if requireSpecialty != "" && !f.HasSpecialty(requireSpecialty) {
			continue
		}
		d := DistanceKm(center, f.Coordinate)
		if d > radiusKm {
			continue
		}
		out = append(out, FacilityCandidate{
			Facility:                f,
			DistanceKm:              d,
			EstimatedArrivalMinutes: TravelMinutes(d, ix.cfg.GeneralSpeedKmh),
		})
	}
	ix.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Facility.FacilityID < out[j].Facility.FacilityID
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// ListActiveResources returns every position reported within the bulk
// freshness window, ordered by resource id.
func (ix *Index) ListActiveResources() []model.ResourcePosition {
	cutoff := ix.now().Add(-ix.cfg.listFreshness())
	ix.mu.RLock()
	var out []model.ResourcePosition
	for _, p := range ix.positions {
		if !p.CapturedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	ix.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out
}
