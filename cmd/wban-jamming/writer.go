package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"wban-jamming-sim/internal/metrics"
	"wban-jamming-sim/internal/sweep"
)

// sinkOptions selects the record sinks shared by every sweep of an invocation.
// The CSV file is per sweep and not part of it.
type sinkOptions struct {
	PrintOnly bool
	JSON      bool
	LogFile   string
	SQLite    string
	MySQLDSN  string
	TUI       bool
	Title     string
	Recorder  *sweep.Recorder
	Metrics   *metrics.Collector
}

// sinks fans records and summaries out to every configured writer.
type sinks struct {
	writer    *sweep.MultiWriter
	summaries []sweep.SummaryWriter
	tui       *sweep.TUIWriter
	closers   []io.Closer
}

// newSinks sets up the writers from opts and env vars. GreptimeDB is used when
// GREPTIMEDB_ENDPOINT is set and printing to STDOUT was not forced.
func newSinks(ctx context.Context, opts sinkOptions, log *slog.Logger) (*sinks, error) {
	s := &sinks{writer: sweep.NewMultiWriter()}
	fail := func(err error) (*sinks, error) {
		s.Close()
		return nil, err
	}

	switch {
	case opts.TUI:
		s.tui = sweep.NewTUIWriter(opts.Title, 0)
		s.add(s.tui)
	case opts.PrintOnly && opts.JSON:
		s.add(sweep.NewJSONStdoutWriter())
	case opts.PrintOnly:
		s.add(sweep.NewStdoutWriter())
	}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !opts.PrintOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		gw, err := sweep.NewGreptimeDBWriter(endpoint, database, os.Getenv("GREPTIMEDB_TABLE"), log)
		if err != nil {
			return fail(err)
		}
		s.add(gw)
	}

	if opts.LogFile != "" {
		fw, err := sweep.NewFileWriter(opts.LogFile, opts.LogFile+".summary")
		if err != nil {
			return fail(err)
		}
		s.add(fw)
	}
	if opts.SQLite != "" {
		sw, err := sweep.OpenSQLWriter(ctx, sweep.DialectSQLite, opts.SQLite, log)
		if err != nil {
			return fail(err)
		}
		s.add(sw)
	}
	if opts.MySQLDSN != "" {
		sw, err := sweep.OpenSQLWriter(ctx, sweep.DialectMySQL, opts.MySQLDSN, log)
		if err != nil {
			return fail(err)
		}
		s.add(sw)
	}
	if opts.Recorder != nil {
		s.add(opts.Recorder)
	}
	if opts.Metrics != nil {
		s.add(opts.Metrics)
	}
	return s, nil
}

func (s *sinks) add(w sweep.Writer) {
	s.writer.Add(w)
	if sw, ok := w.(sweep.SummaryWriter); ok {
		s.summaries = append(s.summaries, sw)
	}
	if c, ok := w.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
}

// withCSV returns a writer sending records to csv first, then to the shared sinks.
func (s *sinks) withCSV(csv sweep.Writer) sweep.Writer {
	return sweep.NewMultiWriter(csv, s.writer)
}

// WriteSummary implements sweep.SummaryWriter.
func (s *sinks) WriteSummary(sum sweep.Summary) error {
	var errs []error
	for _, w := range s.summaries {
		if err := w.WriteSummary(sum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every sink in reverse order of creation.
func (s *sinks) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// addSummary registers a summary-only consumer such as the admin server.
func (s *sinks) addSummary(w sweep.SummaryWriter) {
	s.summaries = append(s.summaries, w)
}
