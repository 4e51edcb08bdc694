package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	coredispatch "github.com/medfleet/dispatch/core/dispatch"
	"github.com/medfleet/dispatch/core/model"
)

// NewAnalyticsHandler returns an HTTP handler exposing dispatch analytics via
// GET /api/dispatch/analytics. Requests must include an Authorization header
// with "Bearer <token>" when token is non-empty. The optional window query
// parameter is a Go duration; zero means the full retained history.
func NewAnalyticsHandler(orch *coredispatch.Orchestrator, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var window time.Duration
		if s := r.URL.Query().Get("window"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				http.Error(w, "invalid window", http.StatusBadRequest)
				return
			}
			window = d
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orch.Analytics(window)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewRequestHandler returns an HTTP handler accepting transport requests via
// POST /api/dispatch/requests. The response carries the match result,
// including alternatives when a resource was assigned.
func NewRequestHandler(orch *coredispatch.Orchestrator, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req model.MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.RequestID == "" {
			http.Error(w, "request_id is required", http.StatusBadRequest)
			return
		}
		res, err := orch.Dispatch(req)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrInvalidCoordinate) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewManualHandler returns an HTTP handler for operator overrides via
// POST /api/dispatch/manual.
func NewManualHandler(orch *coredispatch.Orchestrator, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			RequestID  string `json:"request_id"`
			ResourceID string `json:"resource_id"`
			Reason     string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		asn, err := orch.ManualDispatch(body.RequestID, body.ResourceID, body.Reason)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, model.ErrRequestNotFound):
				status = http.StatusNotFound
			case errors.Is(err, model.ErrResourceUnavailable):
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(asn); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}
