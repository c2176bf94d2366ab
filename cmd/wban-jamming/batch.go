package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wban-jamming-sim/internal/config"
	"wban-jamming-sim/internal/experiment"
	"wban-jamming-sim/internal/logging"
	"wban-jamming-sim/internal/scenario"
	"wban-jamming-sim/internal/tissue"
)

var (
	batchPlanPath   string
	batchBuiltIn    string
	batchConfigPath string
	batchSchemaPath string
	batchPackets    int
	batchPrintOnly  bool
	batchLogFile    string
	batchSQLite     string
	batchMySQLDSN   string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every sweep of a plan",
	Long:  "batch runs the sweeps of a YAML plan (or a built-in plan) one after another, each writing its own CSV file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := selectPlan(batchPlanPath, batchBuiltIn)
		if err != nil {
			return err
		}
		base := config.Default()
		if batchConfigPath != "" {
			c, err := config.Load(batchConfigPath, batchSchemaPath)
			if err != nil {
				return err
			}
			base = *c
		}
		if cmd.Flags().Changed("packets") {
			base.Experiment.NoJamPackets = batchPackets
			base.Experiment.JamPackets = batchPackets
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		sk, err := newSinks(ctx, sinkOptions{
			PrintOnly: batchPrintOnly,
			LogFile:   batchLogFile,
			SQLite:    batchSQLite,
			MySQLDSN:  batchMySQLDSN,
		}, log)
		if err != nil {
			return err
		}
		defer sk.Close()

		log.Info("batch started", "plan", plan.Name, "sweeps", len(plan.Sweeps))
		out := cmd.OutOrStdout()
		for _, s := range plan.Sweeps {
			cfg := s.Apply(base)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("sweep %q: %w", s.Name, err)
			}
			organ := tissue.ParseOrganOrDefault(ctx, cfg.Organ)
			exp := experiment.New(experiment.NewTestbed(organ))
			params := cfg.SweepParams(cfg.ExperimentConfig(organ, false))
			sum, path, err := sweepToCSV(logging.NewContext(ctx, log.With("sweep", s.Name)), exp, params, cfg.Scan.CSV, sk)
			if err != nil {
				return fmt.Errorf("sweep %q: %w", s.Name, err)
			}
			fmt.Fprintf(out, "[%s] %s: %s\n", s.Name, path, sum.Report())
		}
		return sk.Close()
	},
}

func selectPlan(path, builtIn string) (*scenario.Plan, error) {
	switch {
	case path != "" && builtIn != "":
		return nil, fmt.Errorf("--plan and --builtin are mutually exclusive")
	case path != "":
		return scenario.Load(path)
	case builtIn != "":
		plans := scenario.BuiltIn()
		p, ok := plans[builtIn]
		if !ok {
			names := make([]string, 0, len(plans))
			for n := range plans {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("unknown built-in plan %q (available: %s)", builtIn, strings.Join(names, ", "))
		}
		return &p, nil
	}
	return nil, fmt.Errorf("either --plan or --builtin is required")
}

func init() {
	batchCmd.Flags().StringVar(&batchPlanPath, "plan", "", "Path to batch plan YAML")
	batchCmd.Flags().StringVar(&batchBuiltIn, "builtin", "", "Name of a built-in plan (organ-survey, jammer-standoff, near-field)")
	batchCmd.Flags().StringVar(&batchConfigPath, "config", "", "Base experiment configuration YAML")
	batchCmd.Flags().StringVar(&batchSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	batchCmd.Flags().IntVar(&batchPackets, "packets", 5000, "Packets per phase for every sweep")
	batchCmd.Flags().BoolVar(&batchPrintOnly, "print-only", false, "Print sweep points to STDOUT instead of writing to DB")
	batchCmd.Flags().StringVar(&batchLogFile, "log-file", "", "Path to export sweep points (JSONL)")
	batchCmd.Flags().StringVar(&batchSQLite, "sqlite", "", "SQLite database file for sweep points")
	batchCmd.Flags().StringVar(&batchMySQLDSN, "mysql-dsn", "", "MySQL DSN for sweep points")
}
