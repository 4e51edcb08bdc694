package capacity

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/medfleet/dispatch/core/model"
)

// Alert severities and kinds surfaced by the analytics derivation.
const (
	AlertLowCapacity     = "LOW_CAPACITY"
	AlertHighUtilization = "HIGH_UTILIZATION"
	AlertNoICU           = "NO_ICU"

	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// trendDeadBand is the occupancy delta below which a trend reads as stable.
const trendDeadBand = 0.02

// Alert flags a facility needing operator attention.
type Alert struct {
	FacilityID string `json:"facility_id"`
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
}

// FacilityAnalytics summarizes one facility over the analytics window.
type FacilityAnalytics struct {
	FacilityID    string  `json:"facility_id"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Trend         string  `json:"trend"`
}

// Analytics aggregates ledger state for monitoring dashboards.
type Analytics struct {
	AverageOccupancy float64             `json:"average_occupancy"`
	PerFacility      []FacilityAnalytics `json:"per_facility"`
	Alerts           []Alert             `json:"alerts"`
}

// Analytics derives occupancy, per-facility trend and alerts from the current
// records and the bounded mutation history inside the window.
func (l *Ledger) Analytics(window time.Duration) Analytics {
	l.mu.RLock()
	ids := make([]string, 0, len(l.facilities))
	for id := range l.facilities {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	sort.Strings(ids)

	cutoff := l.now().Add(-window)
	var out Analytics
	var occupancies []float64
	for _, id := range ids {
		st, err := l.state(id)
		if err != nil {
			continue
		}
		st.mu.Lock()
		rec := st.record
		var series []float64
		for _, h := range st.history {
			if window > 0 && h.at.Before(cutoff) {
				continue
			}
			series = append(series, h.record.OccupancyRate())
		}
		st.mu.Unlock()

		occ := rec.OccupancyRate()
		occupancies = append(occupancies, occ)
		out.PerFacility = append(out.PerFacility, FacilityAnalytics{
			FacilityID:    id,
			OccupancyRate: occ,
			Trend:         trend(series),
		})
		out.Alerts = append(out.Alerts, alertsFor(rec)...)
	}
	if len(occupancies) > 0 {
		out.AverageOccupancy = stat.Mean(occupancies, nil)
	}
	return out
}

// trend compares the mean occupancy of the newest third of the series against
// the oldest third, with a dead-band around zero.
func trend(series []float64) string {
	third := len(series) / 3
	if third == 0 {
		return "stable"
	}
	oldest := stat.Mean(series[:third], nil)
	newest := stat.Mean(series[len(series)-third:], nil)
	delta := newest - oldest
	if math.Abs(delta) <= trendDeadBand {
		return "stable"
	}
	if delta > 0 {
		return "increasing"
	}
	return "decreasing"
}

func alertsFor(rec model.CapacityRecord) []Alert {
	var out []Alert
	if rec.AvailableEmergencyBeds <= 1 {
		sev := SeverityWarning
		if rec.AvailableEmergencyBeds == 0 {
			sev = SeverityCritical
		}
		out = append(out, Alert{FacilityID: rec.FacilityID, Kind: AlertLowCapacity, Severity: sev})
	}
	if rec.OccupancyRate() > 0.9 {
		out = append(out, Alert{FacilityID: rec.FacilityID, Kind: AlertHighUtilization, Severity: SeverityWarning})
	}
	if rec.AvailableICUBeds == 0 {
		out = append(out, Alert{FacilityID: rec.FacilityID, Kind: AlertNoICU, Severity: SeverityCritical})
	}
	return out
}
