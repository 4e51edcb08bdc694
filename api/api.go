package api

import (
	"context"
	"net/http"
	"time"

	apicapacity "github.com/medfleet/dispatch/api/capacity"
	apidispatch "github.com/medfleet/dispatch/api/dispatch"
	"github.com/medfleet/dispatch/api/fleet"
	"github.com/medfleet/dispatch/api/requests"
	"github.com/medfleet/dispatch/core/capacity"
	coredispatch "github.com/medfleet/dispatch/core/dispatch"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/lifecycle"
)

// Config defines the HTTP API listener.
type Config struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// Token guards the dispatch endpoints when non-empty; read-only
	// endpoints stay open.
	Token string `json:"token"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// NewMux assembles the engine's HTTP surface.
func NewMux(cfg Config, orch *coredispatch.Orchestrator, index *geo.Index, ledger *capacity.Ledger, store *lifecycle.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/fleet/status", fleet.NewStatusHandler(index))
	mux.Handle("/api/capacity", apicapacity.NewSnapshotHandler(ledger))
	mux.Handle("/api/capacity/analytics", apicapacity.NewAnalyticsHandler(ledger))
	mux.Handle("/api/requests", requests.NewTimelineHandler(store))
	mux.Handle("/api/dispatch/requests", apidispatch.NewRequestHandler(orch, cfg.Token))
	mux.Handle("/api/dispatch/manual", apidispatch.NewManualHandler(orch, cfg.Token))
	mux.Handle("/api/dispatch/analytics", apidispatch.NewAnalyticsHandler(orch, cfg.Token))
	return mux
}

// Serve runs the API server until the context is canceled.
func Serve(ctx context.Context, cfg Config, handler http.Handler) error {
	cfg.SetDefaults()
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
