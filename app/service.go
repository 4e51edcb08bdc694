package app

import (
	"context"
	"fmt"

	"github.com/medfleet/dispatch/api"
	"github.com/medfleet/dispatch/config"
	"github.com/medfleet/dispatch/core/capacity"
	"github.com/medfleet/dispatch/core/dispatch"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/lifecycle"
	coremetrics "github.com/medfleet/dispatch/core/metrics"
	"github.com/medfleet/dispatch/core/scheduler"
	"github.com/medfleet/dispatch/core/scoring"
	"github.com/medfleet/dispatch/infra/broadcast"
	"github.com/medfleet/dispatch/infra/logger"
	"github.com/medfleet/dispatch/infra/metrics"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// Service wires the matching engine together with its adapters.
type Service struct {
	Index        *geo.Index
	Ledger       *capacity.Ledger
	Lifecycle    *lifecycle.Store
	Orchestrator *dispatch.Orchestrator

	bus         eventbus.EventBus
	broadcaster *broadcast.Broadcaster
	scheduler   *scheduler.Scheduler
	log         logger.Logger
	apiCfg      api.Config
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New()

	index := geo.NewIndex(cfg.Geo)
	ledger := capacity.NewLedger(bus)
	lc := lifecycle.NewStore(bus)
	scorer := scoring.NewScorer(cfg.Scoring)

	var sink coremetrics.Sink
	if cfg.Metrics.InfluxEnabled {
		sink = metrics.NewInfluxSinkWithFallback(cfg.Metrics)
	}
	orch, err := dispatch.NewOrchestrator(cfg.Dispatch, index, ledger, scorer, lc, bus, logg, sink)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	svc := &Service{
		Index:        index,
		Ledger:       ledger,
		Lifecycle:    lc,
		Orchestrator: orch,
		bus:          bus,
		log:          logg,
		apiCfg:       cfg.API,
		promEnabled:  cfg.Metrics.PrometheusEnabled,
		promAddr:     cfg.Metrics.PrometheusAddr,
	}
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, ledger, bus, logger.New("scheduler"))
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		svc.scheduler = sched
	}
	if cfg.Broadcast.Enabled {
		b, err := broadcast.New(cfg.Broadcast)
		if err != nil {
			return nil, fmt.Errorf("broadcaster: %w", err)
		}
		svc.broadcaster = b
	}
	return svc, nil
}

// Bus exposes the engine event bus for additional subscribers.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Run starts the adapters and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.broadcaster != nil {
		go s.broadcaster.Run(ctx, s.bus)
		if err := s.broadcaster.ListenPositions(s.Index); err != nil {
			return err
		}
	}
	if s.scheduler != nil {
		go s.scheduler.Run(ctx)
	}
	if s.apiCfg.Enabled {
		mux := api.NewMux(s.apiCfg, s.Orchestrator, s.Index, s.Ledger, s.Lifecycle)
		go func() {
			if err := api.Serve(ctx, s.apiCfg, mux); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.broadcaster != nil {
		s.broadcaster.Close()
	}
	s.bus.Close()
	return nil
}
