package model

import "testing"

func TestCoordinateValidate(t *testing.T) {
	if err := (Coordinate{Lat: 28.6139, Lon: 77.209}).Validate(); err != nil {
		t.Fatalf("valid coordinate rejected: %v", err)
	}
	for _, c := range []Coordinate{{Lat: 91}, {Lat: -90.1}, {Lon: 180.5}, {Lon: -181}} {
		if err := c.Validate(); err != ErrInvalidCoordinate {
			t.Errorf("coordinate %+v: expected ErrInvalidCoordinate, got %v", c, err)
		}
	}
}

func TestCapacityRecordValidate(t *testing.T) {
	rec := CapacityRecord{FacilityID: "f1", TotalBeds: 10, AvailableBeds: 4, ICUBeds: 2, AvailableICUBeds: 2}
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	rec.AvailableICUBeds = 3
	if err := rec.Validate(); err == nil {
		t.Fatal("available above total accepted")
	}
	rec.AvailableICUBeds = -1
	if err := rec.Validate(); err == nil {
		t.Fatal("negative available accepted")
	}
}

func TestMatchRequestSearchRadius(t *testing.T) {
	cases := []struct {
		prio Priority
		want float64
	}{
		{PriorityCritical, 100},
		{PriorityHigh, 50},
		{PriorityMedium, 30},
		{PriorityLow, 20},
	}
	for _, c := range cases {
		if got := (MatchRequest{Priority: c.prio}).SearchRadiusKm(); got != c.want {
			t.Errorf("%s: radius %v, want %v", c.prio, got, c.want)
		}
	}
	req := MatchRequest{Priority: PriorityLow, MaxDistanceKm: 7.5}
	if got := req.SearchRadiusKm(); got != 7.5 {
		t.Errorf("override radius %v, want 7.5", got)
	}
}

func TestHasAttributes(t *testing.T) {
	p := ResourcePosition{Attributes: map[string]string{"als": "true", "ventilator": "true"}}
	if !p.HasAttributes(map[string]string{"als": "true"}) {
		t.Error("subset match failed")
	}
	if p.HasAttributes(map[string]string{"bariatric": "true"}) {
		t.Error("missing attribute matched")
	}
	if !p.HasAttributes(nil) {
		t.Error("empty requirement must always match")
	}
}
