package main

import (
	"os"

	"github.com/spf13/cobra"

	"wban-jamming-sim/internal/dashboard"
	"wban-jamming-sim/internal/logging"
	"wban-jamming-sim/internal/sweep"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the sweep sinks",
	Long:  "dashboard writes Grafana dashboards for the GreptimeDB sweep table and the /metrics endpoint.",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := os.Getenv("GREPTIMEDB_TABLE")
		if table == "" {
			table = sweep.DefaultGreptimeTable
		}
		if err := dashboard.Render(dashboardOut, dashboard.Data{Table: table}); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("dashboards rendered", "dir", dashboardOut, "table", table)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
	rootCmd.AddCommand(dashboardCmd)
}
