package fleet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/model"
)

func TestStatusHandler(t *testing.T) {
	now := time.Now()
	index := geo.NewIndex(geo.Config{})
	index.SetClock(func() time.Time { return now })
	for _, p := range []model.ResourcePosition{
		{ResourceID: "amb-1", Coordinate: model.Coordinate{Lat: 28.61, Lon: 77.21}, CapturedAt: now, Availability: model.ResourceAvailable},
		{ResourceID: "amb-2", Coordinate: model.Coordinate{Lat: 28.62, Lon: 77.22}, CapturedAt: now, Availability: model.ResourceDispatched},
	} {
		if err := index.UpsertResourcePosition(p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	h := NewStatusHandler(index)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []model.ResourcePosition
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(all))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/status?availability=dispatched", nil))
	var filtered []model.ResourcePosition
	if err := json.Unmarshal(rec.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ResourceID != "amb-2" {
		t.Fatalf("expected only amb-2, got %+v", filtered)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fleet/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST should be rejected, got %d", rec.Code)
	}
}
