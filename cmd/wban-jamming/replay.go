package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wban-jamming-sim/internal/logging"
	"wban-jamming-sim/internal/sweep"
)

var (
	replayInput     string
	replayAxis      string
	replayOrgan     string
	replayThreshold float64
	replaySweepID   string
	replayPrintOnly bool
	replayJSON      bool
	replaySQLite    string
	replayMySQLDSN  string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a sweep CSV file",
	Long:  "replay feeds the rows of a recorded sweep CSV into GreptimeDB, SQL or STDOUT and recomputes the safe distance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		ctx := cmd.Context()
		sk, err := newSinks(ctx, sinkOptions{
			PrintOnly: replayPrintOnly,
			JSON:      replayJSON,
			SQLite:    replaySQLite,
			MySQLDSN:  replayMySQLDSN,
		}, logging.FromContext(ctx))
		if err != nil {
			return err
		}
		defer sk.Close()

		meta := sweep.ReplayMeta{
			SweepID:   replaySweepID,
			Axis:      sweep.ParseAxis(replayAxis),
			Organ:     replayOrgan,
			Threshold: sweep.ClampThreshold(replayThreshold),
		}
		sum, err := sweep.ReplayCSVFile(replayInput, meta, sk.writer)
		if err != nil {
			return fmt.Errorf("replay %s: %w", replayInput, err)
		}
		if err := sk.WriteSummary(sum); err != nil {
			return err
		}
		if err := sk.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[Replay] %d points from %s (sweep %s)\n", sum.Count, replayInput, sum.SweepID)
		fmt.Fprintln(cmd.OutOrStdout(), "[Threshold] "+sum.Report())
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to sweep CSV file")
	replayCmd.Flags().StringVar(&replayAxis, "axis", "rx", "Axis the sweep moved (rx or jam)")
	replayCmd.Flags().StringVar(&replayOrgan, "organ", "", "Organ label stamped on replayed rows")
	replayCmd.Flags().Float64Var(&replayThreshold, "threshold", 0.05, "Threshold label stamped on replayed rows")
	replayCmd.Flags().StringVar(&replaySweepID, "sweep-id", "", "Sweep identifier (random when empty)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print rows as JSON (with --print-only)")
	replayCmd.Flags().StringVar(&replaySQLite, "sqlite", "", "SQLite database file")
	replayCmd.Flags().StringVar(&replayMySQLDSN, "mysql-dsn", "", "MySQL DSN")
	replayCmd.MarkFlagRequired("input")
}
