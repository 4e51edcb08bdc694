package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/medfleet/dispatch/core/capacity"
	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/logger"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// Scheduler reviews the capacity ledger on a fixed interval and publishes
// alert events for facilities running low, hot or without ICU beds.
type Scheduler struct {
	cfg    Config
	ledger *capacity.Ledger
	bus    eventbus.EventBus
	log    logger.Logger
	now    func() time.Time
}

// New creates a scheduler.
func New(cfg Config, ledger *capacity.Ledger, bus eventbus.EventBus, log logger.Logger) (*Scheduler, error) {
	if ledger == nil || log == nil {
		return nil, fmt.Errorf("scheduler: nil parameter provided to New")
	}
	cfg.SetDefaults()
	return &Scheduler{cfg: cfg, ledger: ledger, bus: bus, log: log, now: time.Now}, nil
}

// SetClock overrides the time source for tests.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Run reviews the ledger every interval until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Review()
		case <-ctx.Done():
			return
		}
	}
}

// Review runs one review pass and returns the alerts it raised.
func (s *Scheduler) Review() []capacity.Alert {
	window := time.Duration(s.cfg.WindowMinutes) * time.Minute
	a := s.ledger.Analytics(window)
	if len(a.Alerts) == 0 {
		s.log.Debugf("capacity review: %d facilities, avg occupancy %.0f%%, no alerts",
			len(a.PerFacility), a.AverageOccupancy*100)
		return nil
	}
	at := s.now()
	for _, al := range a.Alerts {
		s.log.Warnf("capacity review: %s %s (%s)", al.FacilityID, al.Kind, al.Severity)
		if s.bus != nil {
			s.bus.Publish(events.CapacityAlertEvent{
				FacilityID: al.FacilityID,
				Kind:       al.Kind,
				Severity:   al.Severity,
				RaisedAt:   at,
			})
		}
	}
	return a.Alerts
}
