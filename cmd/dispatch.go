package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/medfleet/dispatch/app"
	"github.com/medfleet/dispatch/config"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/internal/seed"
)

var (
	dispatchPriority  string
	dispatchCondition string
	dispatchLat       float64
	dispatchLon       float64
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run a demo transport request through the engine",
	RunE:  dispatchRequest,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchPriority, "priority", "HIGH", "request priority (LOW, MEDIUM, HIGH, CRITICAL)")
	dispatchCmd.Flags().StringVar(&dispatchCondition, "condition", "chest pain", "free-text patient condition")
	dispatchCmd.Flags().Float64Var(&dispatchLat, "lat", 28.6139, "pickup latitude")
	dispatchCmd.Flags().Float64Var(&dispatchLon, "lon", 77.209, "pickup longitude")
	rootCmd.AddCommand(dispatchCmd)
}

func parsePriority(s string) (model.Priority, error) {
	switch s {
	case "LOW":
		return model.PriorityLow, nil
	case "MEDIUM":
		return model.PriorityMedium, nil
	case "HIGH":
		return model.PriorityHigh, nil
	case "CRITICAL":
		return model.PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

func dispatchRequest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	prio, err := parsePriority(dispatchPriority)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	if err := seed.Apply(svc.Index, svc.Ledger, 12, time.Now()); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	req := model.MatchRequest{
		RequestID:     uuid.NewString(),
		Origin:        model.Coordinate{Lat: dispatchLat, Lon: dispatchLon},
		Priority:      prio,
		ConditionText: dispatchCondition,
	}
	res, err := svc.Orchestrator.Dispatch(req)
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Printf("no assignment: %s\n", res.Message)
		return nil
	}
	fmt.Printf("assigned %s: %.2f km, eta %.1f min\n",
		res.Assignment.ResourceID, res.Assignment.DistanceKm, res.Assignment.EstimatedArrivalMinutes)
	if res.Facility != nil {
		fmt.Printf("receiving facility %s (score %.3f, wait %.0f min)\n",
			res.Facility.Facility.FacilityID, res.Facility.Score, res.Facility.EstimatedWaitMinutes)
	}
	for _, alt := range res.Alternatives {
		fmt.Printf("alternative %s at %.2f km\n", alt.Position.ResourceID, alt.DistanceKm)
	}
	return nil
}
