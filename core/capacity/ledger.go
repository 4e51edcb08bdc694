package capacity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// historySize bounds the per-facility mutation log used for trend analytics.
const historySize = 1000

// Reservation is a handle for one decremented bed slot. It is returned by
// Reserve and redeemed exactly once through Release.
type Reservation struct {
	ID         string
	FacilityID string
	Class      model.BedClass
	CreatedAt  time.Time
}

type historyPoint struct {
	at     time.Time
	record model.CapacityRecord
}

// facilityState serializes all mutations for one facility. The per-facility
// mutex keeps unrelated facilities' updates independent.
type facilityState struct {
	mu      sync.Mutex
	record  model.CapacityRecord
	history []historyPoint
	open    map[string]Reservation
}

func (st *facilityState) appendHistory(now time.Time) {
	st.history = append(st.history, historyPoint{at: now, record: st.record})
	if len(st.history) > historySize {
		st.history = st.history[len(st.history)-historySize:]
	}
}

// Ledger is the single source of truth for facility bed counts. Reserve is a
// linearizable check-and-decrement per facility: two concurrent reservations
// never both succeed when only one bed remains.
type Ledger struct {
	mu         sync.RWMutex
	facilities map[string]*facilityState

	bus eventbus.EventBus
	now func() time.Time
}

// NewLedger creates an empty ledger. The bus may be nil; events are then
// discarded.
func NewLedger(bus eventbus.EventBus) *Ledger {
	return &Ledger{
		facilities: make(map[string]*facilityState),
		bus:        bus,
		now:        time.Now,
	}
}

// SetClock overrides the time source for tests.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

func (l *Ledger) publish(rec model.CapacityRecord, cause string) {
	if l.bus != nil {
		l.bus.Publish(events.CapacityChangedEvent{Record: rec, Cause: cause})
	}
}

func (l *Ledger) state(facilityID string) (*facilityState, error) {
	l.mu.RLock()
	st, ok := l.facilities[facilityID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("facility %s: %w", facilityID, model.ErrFacilityNotFound)
	}
	return st, nil
}

// Register creates the capacity record for a facility. Registering an already
// known facility replaces its record wholesale.
func (l *Ledger) Register(rec model.CapacityRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.LastUpdated = l.now()
	l.mu.Lock()
	st, ok := l.facilities[rec.FacilityID]
	if !ok {
		st = &facilityState{open: make(map[string]Reservation)}
		l.facilities[rec.FacilityID] = st
	}
	l.mu.Unlock()

	st.mu.Lock()
	st.record = rec
	st.appendHistory(rec.LastUpdated)
	st.mu.Unlock()
	setBedGauges(rec)
	l.publish(rec, "update")
	return nil
}

// Record returns the current capacity record for the facility.
func (l *Ledger) Record(facilityID string) (model.CapacityRecord, error) {
	st, err := l.state(facilityID)
	if err != nil {
		return model.CapacityRecord{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.record, nil
}

// Snapshot returns the current record of every registered facility.
func (l *Ledger) Snapshot() []model.CapacityRecord {
	l.mu.RLock()
	states := make([]*facilityState, 0, len(l.facilities))
	for _, st := range l.facilities {
		states = append(states, st)
	}
	l.mu.RUnlock()
	out := make([]model.CapacityRecord, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		out = append(out, st.record)
		st.mu.Unlock()
	}
	return out
}

// Reserve atomically checks and decrements one available bed of the class.
// On ErrNoCapacity the record is left untouched.
func (l *Ledger) Reserve(facilityID string, class model.BedClass) (Reservation, error) {
	st, err := l.state(facilityID)
	if err != nil {
		return Reservation{}, err
	}

	st.mu.Lock()
	if st.record.Available(class) <= 0 {
		st.mu.Unlock()
		reservationsDenied.WithLabelValues(class.String()).Inc()
		return Reservation{}, fmt.Errorf("facility %s, %s bed: %w", facilityID, class, model.ErrNoCapacity)
	}
	addAvailable(&st.record, class, -1)
	st.record.LastUpdated = l.now()
	res := Reservation{
		ID:         uuid.NewString(),
		FacilityID: facilityID,
		Class:      class,
		CreatedAt:  st.record.LastUpdated,
	}
	st.open[res.ID] = res
	st.appendHistory(st.record.LastUpdated)
	rec := st.record
	st.mu.Unlock()

	setBedGauges(rec)
	l.publish(rec, "reserve")
	return res, nil
}

// Release returns the reserved bed to the pool. Redeeming a handle twice, or
// a handle the ledger never issued, is a caller error.
func (l *Ledger) Release(res Reservation) error {
	st, err := l.state(res.FacilityID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if _, ok := st.open[res.ID]; !ok {
		st.mu.Unlock()
		return fmt.Errorf("reservation %s: %w", res.ID, model.ErrInvalidReservation)
	}
	delete(st.open, res.ID)
	addAvailable(&st.record, res.Class, 1)
	// A capacity update may have shrunk the pool while the bed was held.
	if over := st.record.Available(res.Class) - st.record.Total(res.Class); over > 0 {
		addAvailable(&st.record, res.Class, -over)
	}
	st.record.LastUpdated = l.now()
	st.appendHistory(st.record.LastUpdated)
	rec := st.record
	st.mu.Unlock()

	setBedGauges(rec)
	l.publish(rec, "release")
	return nil
}

// Update is a partial capacity change; nil fields keep their prior value.
type Update struct {
	TotalBeds              *int
	AvailableBeds          *int
	ICUBeds                *int
	AvailableICUBeds       *int
	EmergencyBeds          *int
	AvailableEmergencyBeds *int
}

// UpdateCapacity merges the partial update into the facility record, stamps
// LastUpdated, appends to the history log and emits a capacity-changed event.
// An update that would violate 0 <= available <= total is rejected whole.
func (l *Ledger) UpdateCapacity(facilityID string, upd Update) (model.CapacityRecord, error) {
	st, err := l.state(facilityID)
	if err != nil {
		return model.CapacityRecord{}, err
	}

	st.mu.Lock()
	merged := st.record
	applyUpdate(&merged, upd)
	if err := merged.Validate(); err != nil {
		st.mu.Unlock()
		return model.CapacityRecord{}, err
	}
	merged.LastUpdated = l.now()
	st.record = merged
	st.appendHistory(merged.LastUpdated)
	st.mu.Unlock()

	setBedGauges(merged)
	l.publish(merged, "update")
	return merged, nil
}

func applyUpdate(rec *model.CapacityRecord, upd Update) {
	if upd.TotalBeds != nil {
		rec.TotalBeds = *upd.TotalBeds
	}
	if upd.AvailableBeds != nil {
		rec.AvailableBeds = *upd.AvailableBeds
	}
	if upd.ICUBeds != nil {
		rec.ICUBeds = *upd.ICUBeds
	}
	if upd.AvailableICUBeds != nil {
		rec.AvailableICUBeds = *upd.AvailableICUBeds
	}
	if upd.EmergencyBeds != nil {
		rec.EmergencyBeds = *upd.EmergencyBeds
	}
	if upd.AvailableEmergencyBeds != nil {
		rec.AvailableEmergencyBeds = *upd.AvailableEmergencyBeds
	}
}

func addAvailable(rec *model.CapacityRecord, class model.BedClass, delta int) {
	switch class {
	case model.BedICU:
		rec.AvailableICUBeds += delta
	case model.BedEmergency:
		rec.AvailableEmergencyBeds += delta
	default:
		rec.AvailableBeds += delta
	}
}
