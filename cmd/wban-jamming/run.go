package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"wban-jamming-sim/internal/admin"
	"wban-jamming-sim/internal/config"
	"wban-jamming-sim/internal/experiment"
	"wban-jamming-sim/internal/logging"
	"wban-jamming-sim/internal/metrics"
	"wban-jamming-sim/internal/sweep"
	"wban-jamming-sim/internal/tissue"
)

// runFlags holds the command line values; they only override the config file
// when set explicitly.
type runFlags struct {
	configPath string
	schemaPath string

	txX, txY, rxX, rxY, jamX, jamY float64
	noJamPackets, jamPackets       int
	fatLayers, muscleLayers        uint32
	bodyOrgan                      string

	scanCsv                       string
	scanStart, scanStop, scanStep float64
	jamThreshold                  float64
	scanTarget                    string

	printOnly bool
	jsonOut   bool
	logFile   string
	sqlite    string
	mysqlDSN  string
	tui       bool
	adminAddr string
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jamming experiment and an optional position sweep",
	Long: "run executes one logged experiment at the configured positions. When --scanCsv is given " +
		"it then sweeps the receiver (or the jammer with --scanTarget=jam) along X and writes one CSV row per point.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(runOpts, cmd.Flags().Changed)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runExperiment(ctx, cfg, cmd.OutOrStdout())
	},
}

func init() {
	f := runCmd.Flags()
	d := config.Default()
	f.StringVar(&runOpts.configPath, "config", "", "Path to experiment configuration YAML")
	f.StringVar(&runOpts.schemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")

	f.Float64Var(&runOpts.txX, "txX", d.Tx.X, "Transmitter X position (m)")
	f.Float64Var(&runOpts.txY, "txY", d.Tx.Y, "Transmitter Y position (m)")
	f.Float64Var(&runOpts.rxX, "rxX", d.Rx.X, "Receiver X position (m)")
	f.Float64Var(&runOpts.rxY, "rxY", d.Rx.Y, "Receiver Y position (m)")
	f.Float64Var(&runOpts.jamX, "jamX", d.Jam.X, "Jammer X position (m)")
	f.Float64Var(&runOpts.jamY, "jamY", d.Jam.Y, "Jammer Y position (m)")
	f.IntVar(&runOpts.noJamPackets, "noJamPackets", d.Experiment.NoJamPackets, "Packets sent without jamming")
	f.IntVar(&runOpts.jamPackets, "jamPackets", d.Experiment.JamPackets, "Packets sent while the jammer is active")
	f.Uint32Var(&runOpts.fatLayers, "fatLayers", d.FatLayers, "Fat layer multiplier")
	f.Uint32Var(&runOpts.muscleLayers, "muscleLayers", d.MuscleLayers, "Muscle layer multiplier")
	f.StringVar(&runOpts.bodyOrgan, "bodyOrgan", d.Organ, "Tissue profile of the implant (e.g. heart-402)")

	f.StringVar(&runOpts.scanCsv, "scanCsv", "", "CSV path for the position sweep (relative paths go under "+sweep.DefaultCSVDir+")")
	f.Float64Var(&runOpts.scanStart, "scanStart", d.Scan.Start, "Sweep start position (m)")
	f.Float64Var(&runOpts.scanStop, "scanStop", d.Scan.Stop, "Sweep stop position (m)")
	f.Float64Var(&runOpts.scanStep, "scanStep", d.Scan.Step, "Sweep step (m)")
	f.Float64Var(&runOpts.jamThreshold, "jamThreshold", d.Scan.Threshold, "Jamming threshold (0-1) on the phase 2 success rate")
	f.StringVar(&runOpts.scanTarget, "scanTarget", d.Scan.Axis, "Swept node: rx or jam")

	f.BoolVar(&runOpts.printOnly, "print-only", false, "Print sweep points to STDOUT and skip GreptimeDB")
	f.BoolVar(&runOpts.jsonOut, "json", false, "Print sweep points as JSON (with --print-only)")
	f.StringVar(&runOpts.logFile, "log-file", "", "Path to export sweep points (JSONL)")
	f.StringVar(&runOpts.sqlite, "sqlite", "", "SQLite database file for sweep points")
	f.StringVar(&runOpts.mysqlDSN, "mysql-dsn", "", "MySQL DSN for sweep points")
	f.BoolVar(&runOpts.tui, "tui", false, "Show sweep progress in a terminal UI")
	f.StringVar(&runOpts.adminAddr, "admin-addr", "", "Serve sweep status and /metrics on this address (e.g. :8080)")
}

// loadRunConfig layers the config file (if any) and explicitly set flags over
// the defaults, then validates the result.
func loadRunConfig(o runFlags, changed func(string) bool) (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath, o.schemaPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		d := config.Default()
		cfg = &d
	}

	setF := func(name string, dst *float64, v float64) {
		if changed(name) {
			*dst = v
		}
	}
	setF("txX", &cfg.Tx.X, o.txX)
	setF("txY", &cfg.Tx.Y, o.txY)
	setF("rxX", &cfg.Rx.X, o.rxX)
	setF("rxY", &cfg.Rx.Y, o.rxY)
	setF("jamX", &cfg.Jam.X, o.jamX)
	setF("jamY", &cfg.Jam.Y, o.jamY)
	setF("scanStart", &cfg.Scan.Start, o.scanStart)
	setF("scanStop", &cfg.Scan.Stop, o.scanStop)
	setF("scanStep", &cfg.Scan.Step, o.scanStep)
	setF("jamThreshold", &cfg.Scan.Threshold, o.jamThreshold)
	if changed("noJamPackets") {
		cfg.Experiment.NoJamPackets = o.noJamPackets
	}
	if changed("jamPackets") {
		cfg.Experiment.JamPackets = o.jamPackets
	}
	if changed("fatLayers") {
		cfg.FatLayers = o.fatLayers
	}
	if changed("muscleLayers") {
		cfg.MuscleLayers = o.muscleLayers
	}
	if changed("bodyOrgan") {
		cfg.Organ = o.bodyOrgan
	}
	if changed("scanCsv") {
		cfg.Scan.CSV = o.scanCsv
	}
	if changed("scanTarget") {
		cfg.Scan.Axis = o.scanTarget
	}
	if changed("log-file") {
		cfg.Sinks.LogFile = o.logFile
	}
	if changed("sqlite") {
		cfg.Sinks.SQLite = o.sqlite
	}
	if changed("mysql-dsn") {
		cfg.Sinks.MySQLDSN = o.mysqlDSN
	}
	if changed("tui") {
		cfg.Sinks.TUI = o.tui
	}
	if changed("admin-addr") {
		cfg.Sinks.AdminAddr = o.adminAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runExperiment performs the logged baseline run and, when enabled, the sweep.
func runExperiment(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logging.FromContext(ctx)
	organ := tissue.ParseOrganOrDefault(ctx, cfg.Organ)
	exp := experiment.New(experiment.NewTestbed(organ))

	base := cfg.ExperimentConfig(organ, true)
	res, err := exp.Run(ctx, base)
	if err != nil {
		return fmt.Errorf("baseline run: %w", err)
	}
	log.Info("baseline run complete",
		"organ", res.Organ,
		"no_jam_success_rate", res.BaselineSuccessRate(),
		"jam_success_rate", res.JamPhaseSuccessRate(),
		"jammer_packets_rx", res.JamRxJam)

	if !cfg.Scan.Enabled() {
		return nil
	}

	sk, srv, err := openRunSinks(ctx, cfg, runOpts.printOnly, runOpts.jsonOut, log)
	if err != nil {
		return err
	}
	defer sk.Close()
	if srv != nil {
		sk.addSummary(srv)
	}

	params := cfg.SweepParams(base)
	params.Base.Verbose = false
	sweepCtx := ctx
	if cfg.Sinks.TUI {
		sweepCtx = logging.NewContext(ctx, logging.Discard())
	}
	sum, path, err := sweepToCSV(sweepCtx, exp, params, cfg.Scan.CSV, sk)
	if err != nil {
		return err
	}
	if err := sk.Close(); err != nil {
		log.Warn("closing sinks", "error", err)
	}
	fmt.Fprintf(out, "[CSV] sweep results written to %s\n", path)
	fmt.Fprintln(out, "[Threshold] "+sum.Report())
	return nil
}

// openRunSinks builds the shared sinks and, with an admin address, starts the
// status server in the background for the lifetime of ctx.
func openRunSinks(ctx context.Context, cfg *config.Config, printOnly, jsonOut bool, log *slog.Logger) (*sinks, *admin.Server, error) {
	opts := sinkOptions{
		PrintOnly: printOnly,
		JSON:      jsonOut,
		LogFile:   cfg.Sinks.LogFile,
		SQLite:    cfg.Sinks.SQLite,
		MySQLDSN:  cfg.Sinks.MySQLDSN,
		TUI:       cfg.Sinks.TUI,
		Title:     fmt.Sprintf("WBAN jamming sweep (%s, %s)", cfg.Organ, sweep.ParseAxis(cfg.Scan.Axis)),
	}

	var srv *admin.Server
	if cfg.Sinks.AdminAddr != "" {
		collector, err := metrics.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = sweep.NewRecorder()
		opts.Metrics = collector
		srv = admin.NewServer(opts.Recorder, collector.Handler())
		go func() {
			log.Info("admin server listening", "addr", cfg.Sinks.AdminAddr)
			if err := srv.Start(ctx, cfg.Sinks.AdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "error", err)
			}
		}()
	}

	sk, err := newSinks(ctx, opts, log)
	if err != nil {
		return nil, nil, err
	}
	return sk, srv, nil
}

// sweepToCSV creates the CSV file for one sweep and runs it through the shared
// sinks. It returns the resolved CSV path.
func sweepToCSV(ctx context.Context, exp *experiment.Experiment, params sweep.Params, csvPath string, sk *sinks) (sweep.Summary, string, error) {
	coords, err := sweep.Coordinates(params.Start, params.Stop, params.Step)
	if err != nil {
		return sweep.Summary{}, "", err
	}
	path := sweep.ResolveCSVPath(csvPath, sweep.DefaultCSVDir)
	csv, err := sweep.CreateCSV(path)
	if err != nil {
		return sweep.Summary{}, path, err
	}

	if sk.tui != nil {
		sk.tui.SetTotal(len(coords))
	}
	runner := sweep.NewRunner(exp, sk.withCSV(csv))
	sum, err := runner.Run(ctx, params)
	if cerr := csv.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return sum, path, err
	}
	if err := sk.WriteSummary(sum); err != nil {
		return sum, path, err
	}
	return sum, path, nil
}
