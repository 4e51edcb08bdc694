package requests

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medfleet/dispatch/core/lifecycle"
	"github.com/medfleet/dispatch/core/model"
)

// NewTimelineHandler returns an HTTP handler exposing a request's status and
// timeline via GET /api/requests?id=<request_id>.
func NewTimelineHandler(store *lifecycle.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		req, err := store.Get(id)
		if err != nil {
			if errors.Is(err, model.ErrRequestNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := struct {
			RequestID string                `json:"request_id"`
			Status    string                `json:"status"`
			Timeline  []model.TimelineEntry `json:"timeline"`
		}{
			RequestID: req.RequestID,
			Status:    req.Status.String(),
			Timeline:  req.Timeline,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
