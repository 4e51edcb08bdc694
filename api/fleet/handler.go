package fleet

import (
	"encoding/json"
	"net/http"

	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
)

// NewStatusHandler returns an HTTP handler exposing fleet positions via
// GET /api/fleet/status. The optional availability query parameter narrows
// the listing to one state.
func NewStatusHandler(index *geo.Index) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		positions := index.ListActiveResources()
		if state := r.URL.Query().Get("availability"); state != "" {
			filtered := positions[:0]
			for _, p := range positions {
				if p.Availability.String() == state {
					filtered = append(filtered, p)
				}
			}
			positions = filtered
		}
		if positions == nil {
			positions = []model.ResourcePosition{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(positions); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
