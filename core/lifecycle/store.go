package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// Request is the tracked state of one transport request: its current status
// and the append-only timeline of every transition.
type Request struct {
	RequestID string                `json:"request_id"`
	Status    Status                `json:"status"`
	Timeline  []model.TimelineEntry `json:"timeline"`
}

// Store tracks request lifecycles in memory. Every transition appends exactly
// one timeline entry; history is never rewritten or truncated.
type Store struct {
	mu       sync.RWMutex
	requests map[string]*Request

	bus eventbus.EventBus
	now func() time.Time
}

// NewStore creates an empty lifecycle store. The bus may be nil.
func NewStore(bus eventbus.EventBus) *Store {
	return &Store{
		requests: make(map[string]*Request),
		bus:      bus,
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Open registers a new request in REQUESTED state with its first timeline
// entry. Reopening an existing id is a caller error.
func (s *Store) Open(requestID string, origin model.Coordinate, notes string) error {
	if err := origin.Validate(); err != nil {
		return fmt.Errorf("open request %s: %w", requestID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; ok {
		return fmt.Errorf("open request %s: already tracked: %w", requestID, model.ErrInvalidTransition)
	}
	entry := model.TimelineEntry{
		Status:     StatusRequested.String(),
		Timestamp:  s.now(),
		Coordinate: &origin,
		Notes:      notes,
	}
	s.requests[requestID] = &Request{
		RequestID: requestID,
		Status:    StatusRequested,
		Timeline:  []model.TimelineEntry{entry},
	}
	s.publish(requestID, "", entry)
	return nil
}

// Get returns a copy of the request state.
func (s *Store) Get(requestID string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return Request{}, fmt.Errorf("request %s: %w", requestID, model.ErrRequestNotFound)
	}
	cp := *r
	cp.Timeline = append([]model.TimelineEntry(nil), r.Timeline...)
	return cp, nil
}

// Transition moves the request to the next status, appending one timeline
// entry. Illegal moves fail with ErrInvalidTransition and leave both the
// status and the timeline untouched.
func (s *Store) Transition(requestID string, next Status, coord *model.Coordinate, notes string) error {
	if coord != nil {
		if err := coord.Validate(); err != nil {
			return fmt.Errorf("transition %s: %w", requestID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, model.ErrRequestNotFound)
	}
	if !r.Status.CanTransition(next) {
		return fmt.Errorf("request %s: %s -> %s: %w", requestID, r.Status, next, model.ErrInvalidTransition)
	}
	prev := r.Status
	entry := model.TimelineEntry{
		Status:     next.String(),
		Timestamp:  s.now(),
		Coordinate: coord,
		Notes:      notes,
	}
	r.Status = next
	r.Timeline = append(r.Timeline, entry)
	s.publish(requestID, prev.String(), entry)
	return nil
}

// Cancel moves the request to CANCELLED from any non-terminal state.
func (s *Store) Cancel(requestID, reason string) error {
	return s.Transition(requestID, StatusCancelled, nil, reason)
}

func (s *Store) publish(requestID, previous string, entry model.TimelineEntry) {
	if s.bus != nil {
		s.bus.Publish(events.StatusChangedEvent{
			RequestID: requestID,
			Previous:  previous,
			Entry:     entry,
		})
	}
}
