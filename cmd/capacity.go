package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medfleet/dispatch/app"
	"github.com/medfleet/dispatch/config"
	"github.com/medfleet/dispatch/internal/seed"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Print capacity ledger analytics",
	RunE:  showCapacity,
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}

func showCapacity(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	if err := seed.Apply(svc.Index, svc.Ledger, 12, time.Now()); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	a := svc.Ledger.Analytics(24 * time.Hour)
	fmt.Printf("average occupancy: %.1f%%\n", a.AverageOccupancy*100)
	for _, f := range a.PerFacility {
		fmt.Printf("%s  occupancy %.1f%%  trend %s\n", f.FacilityID, f.OccupancyRate*100, f.Trend)
	}
	for _, al := range a.Alerts {
		fmt.Printf("alert %s: %s (%s)\n", al.FacilityID, al.Kind, al.Severity)
	}
	return nil
}
