package capacity

import (
	"encoding/json"
	"net/http"
	"time"

	corecapacity "github.com/medfleet/dispatch/core/capacity"
)

// NewSnapshotHandler returns an HTTP handler exposing the capacity ledger via
// GET /api/capacity. Each entry is the current record for one facility.
func NewSnapshotHandler(ledger *corecapacity.Ledger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ledger.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewAnalyticsHandler returns an HTTP handler exposing occupancy analytics
// via GET /api/capacity/analytics. The optional window query parameter is a
// Go duration; zero means the full retained history.
func NewAnalyticsHandler(ledger *corecapacity.Ledger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		window := time.Hour
		if s := r.URL.Query().Get("window"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				http.Error(w, "invalid window", http.StatusBadRequest)
				return
			}
			window = d
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ledger.Analytics(window)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
