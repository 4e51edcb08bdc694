package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medfleet/dispatch/app"
	"github.com/medfleet/dispatch/config"
	"github.com/medfleet/dispatch/internal/seed"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "List active fleet resources",
	RunE:  listFleet,
}

func init() {
	rootCmd.AddCommand(fleetCmd)
}

func listFleet(cmd *cobra.Command, args []string) error {
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

	for _, p := range svc.Index.ListActiveResources() {
		fmt.Printf("%s  %s  (%.4f, %.4f)  reported %s\n",
			p.ResourceID, p.Availability, p.Coordinate.Lat, p.Coordinate.Lon,
			p.CapturedAt.Format(time.RFC3339))
	}
	return nil
}
