package dispatch

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/medfleet/dispatch/core/metrics"
)

// ResourcePerformance counts assignments won by one resource.
type ResourcePerformance struct {
	ResourceID  string  `json:"resource_id"`
	Assignments int     `json:"assignments"`
	AvgETAMin   float64 `json:"avg_eta_min"`
}

// Analytics summarizes dispatch history for dashboards. It is derived from
// the recorded assignment history, not recomputed per request.
type Analytics struct {
	TotalDispatches            int                   `json:"total_dispatches"`
	SuccessRate                float64               `json:"success_rate"`
	AverageResponseTimeMinutes float64               `json:"average_response_time_minutes"`
	TopPerformingResources     []ResourcePerformance `json:"top_performing_resources"`
	DispatchByHour             [24]int               `json:"dispatch_by_hour"`
}

// Analytics aggregates the attempts recorded within the window. A zero
// window means the full retained history.
func (o *Orchestrator) Analytics(window time.Duration) Analytics {
	cutoff := o.now().Add(-window)
	o.mu.Lock()
	recs := append([]metrics.AssignmentRecord(nil), o.history...)
	o.mu.Unlock()

	var out Analytics
	var etas []float64
	perResource := map[string]*ResourcePerformance{}
	for _, r := range recs {
		if window > 0 && r.Time.Before(cutoff) {
			continue
		}
		out.TotalDispatches++
		out.DispatchByHour[r.Time.Hour()]++
		if r.Outcome != OutcomeAssigned {
			continue
		}
		etas = append(etas, r.Assignment.EstimatedArrivalMinutes)
		p, ok := perResource[r.Assignment.ResourceID]
		if !ok {
			p = &ResourcePerformance{ResourceID: r.Assignment.ResourceID}
			perResource[r.Assignment.ResourceID] = p
		}
		p.Assignments++
		p.AvgETAMin += r.Assignment.EstimatedArrivalMinutes
	}
	if out.TotalDispatches > 0 {
		out.SuccessRate = float64(len(etas)) / float64(out.TotalDispatches)
	}
	if len(etas) > 0 {
		out.AverageResponseTimeMinutes = stat.Mean(etas, nil)
	}
	for _, p := range perResource {
		p.AvgETAMin /= float64(p.Assignments)
		out.TopPerformingResources = append(out.TopPerformingResources, *p)
	}
	sort.Slice(out.TopPerformingResources, func(i, j int) bool {
		a, b := out.TopPerformingResources[i], out.TopPerformingResources[j]
		if a.Assignments != b.Assignments {
			return a.Assignments > b.Assignments
		}
		return a.ResourceID < b.ResourceID
	})
	if len(out.TopPerformingResources) > 5 {
		out.TopPerformingResources = out.TopPerformingResources[:5]
	}
	return out
}
