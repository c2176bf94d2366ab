package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wban-jamming-sim/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "wban-jamming",
	Short: "WBAN implant link jamming simulator",
	Long:  "wban-jamming runs a two-phase jamming experiment on an in-body transmitter link and sweeps node positions to find the distance at which jamming stops.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.NewWithOptions(logging.Options{Level: logLevel, Format: logFormat})
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logging.NewContext(ctx, log))
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(batchCmd)
}
