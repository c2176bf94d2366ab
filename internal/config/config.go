// YAML experiment config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"wban-jamming-sim/internal/experiment"
	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/sweep"
	"wban-jamming-sim/internal/tissue"
)

// ErrInvalid wraps every semantic validation failure.
var ErrInvalid = errors.New("invalid config")

// Point is a node position on the body plane.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Position lifts p into the mobility model (Z stays 0).
func (p Point) Position() mobility.Position { return mobility.Position{X: p.X, Y: p.Y} }

// Scan configures the position sweep.
type Scan struct {
	CSV       string  `yaml:"csv"`
	Axis      string  `yaml:"axis"`
	Start     float64 `yaml:"start"`
	Stop      float64 `yaml:"stop"`
	Step      float64 `yaml:"step"`
	Threshold float64 `yaml:"threshold"`
}

// Enabled reports whether the sweep should run after the baseline run.
func (s Scan) Enabled() bool { return s.CSV != "" && s.Stop >= s.Start }

// Sinks selects the optional record sinks next to the CSV file.
type Sinks struct {
	LogFile   string `yaml:"log_file"`
	SQLite    string `yaml:"sqlite"`
	MySQLDSN  string `yaml:"mysql_dsn"`
	AdminAddr string `yaml:"admin_addr"`
	TUI       bool   `yaml:"tui"`
}

// Config is the root configuration of one invocation.
type Config struct {
	Tx           Point               `yaml:"tx"`
	Rx           Point               `yaml:"rx"`
	Jam          Point               `yaml:"jam"`
	Organ        string              `yaml:"organ"`
	FatLayers    uint32              `yaml:"fat_layers"`
	MuscleLayers uint32              `yaml:"muscle_layers"`
	Experiment   experiment.Settings `yaml:"experiment"`
	Scan         Scan                `yaml:"scan"`
	Sinks        Sinks               `yaml:"sinks"`
}

// Default mirrors the stock command line: tx at the origin, rx 0.3 m away, the
// jammer 43 m out, 5000 packets per phase and a 0.1..2.0 m receiver sweep.
func Default() Config {
	return Config{
		Tx:           Point{0, 0},
		Rx:           Point{0.3, 0},
		Jam:          Point{43, 0},
		Organ:        tissue.DefaultOrgan.String(),
		FatLayers:    1,
		MuscleLayers: 1,
		Experiment:   experiment.DefaultSettings(),
		Scan: Scan{
			Axis:      "rx",
			Start:     0.1,
			Stop:      2.0,
			Step:      0.1,
			Threshold: 0.05,
		},
	}
}

// Load reads configPath on top of Default after validating it against the CUE
// schema at schemaPath, or the embedded schema when schemaPath is empty.
func Load(configPath, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema := defaultSchema
	if schemaPath != "" {
		if schema, err = os.ReadFile(schemaPath); err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}
	if err := ValidateWithCue(configPath, data, schema); err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default without schema or semantic validation.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks what the schema cannot: settings that would not schedule and
// a sweep step that would never advance.
func (c *Config) Validate() error {
	if err := c.Experiment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !(c.Scan.Step > 0) || math.IsInf(c.Scan.Step, 0) {
		return fmt.Errorf("%w: %w", ErrInvalid, sweep.ErrInvalidStep)
	}
	for _, v := range []float64{c.Tx.X, c.Tx.Y, c.Rx.X, c.Rx.Y, c.Jam.X, c.Jam.Y, c.Scan.Start, c.Scan.Stop, c.Scan.Step, c.Scan.Threshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate or threshold", ErrInvalid)
		}
	}
	return nil
}

// ExperimentConfig builds the baseline run configuration. organ must already be
// resolved by the caller so the fallback warning is logged once.
func (c *Config) ExperimentConfig(organ tissue.Organ, verbose bool) experiment.Config {
	return experiment.Config{
		Tx:           c.Tx.Position(),
		Rx:           c.Rx.Position(),
		Jam:          c.Jam.Position(),
		Organ:        organ,
		FatLayers:    c.FatLayers,
		MuscleLayers: c.MuscleLayers,
		Settings:     c.Experiment,
		Verbose:      verbose,
	}
}

// SweepParams builds the sweep parameters around base. The threshold is clamped.
func (c *Config) SweepParams(base experiment.Config) sweep.Params {
	return sweep.Params{
		Axis:      sweep.ParseAxis(c.Scan.Axis),
		Start:     c.Scan.Start,
		Stop:      c.Scan.Stop,
		Step:      c.Scan.Step,
		Threshold: sweep.ClampThreshold(c.Scan.Threshold),
		Base:      base,
	}
}
