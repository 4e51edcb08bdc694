package scoring

import "github.com/medfleet/dispatch/core/model"

// loadTier buckets an occupancy rate for the wait-time lookup.
func loadTier(occupancy float64) int {
	switch {
	case occupancy < 0.5:
		return 0
	case occupancy < 0.8:
		return 1
	default:
		return 2
	}
}

// waitMinutes is keyed by priority, then load tier (low/medium/high).
var waitMinutes = map[model.Priority][3]float64{
	model.PriorityCritical: {0, 5, 10},
	model.PriorityHigh:     {10, 20, 35},
	model.PriorityMedium:   {20, 40, 60},
	model.PriorityLow:      {30, 60, 90},
}

// EstimatedWaitMinutes looks up the expected intake wait for the priority at
// the facility's current load. It is display information only and never feeds
// the suitability ranking.
func EstimatedWaitMinutes(priority model.Priority, occupancy float64) float64 {
	row, ok := waitMinutes[priority]
	if !ok {
		row = waitMinutes[model.PriorityLow]
	}
	return row[loadTier(occupancy)]
}
