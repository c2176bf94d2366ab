// Package scenario loads batch plans that run several sweeps in one invocation.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wban-jamming-sim/internal/config"
)

// Plan is an ordered list of sweeps with a shared description.
type Plan struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Sweeps      []Sweep `yaml:"sweeps"`
}

// Sweep overrides parts of the base config for one sweep. Nil fields inherit.
type Sweep struct {
	Name         string        `yaml:"name"`
	Organ        string        `yaml:"organ,omitempty"`
	Axis         string        `yaml:"axis,omitempty"`
	Start        *float64      `yaml:"start,omitempty"`
	Stop         *float64      `yaml:"stop,omitempty"`
	Step         *float64      `yaml:"step,omitempty"`
	Threshold    *float64      `yaml:"threshold,omitempty"`
	CSV          string        `yaml:"csv,omitempty"`
	FatLayers    uint32        `yaml:"fat_layers,omitempty"`
	MuscleLayers uint32        `yaml:"muscle_layers,omitempty"`
	Rx           *config.Point `yaml:"rx,omitempty"`
	Jam          *config.Point `yaml:"jam,omitempty"`
}

var ErrEmptyPlan = errors.New("plan has no sweeps")

// Load reads a YAML plan from disk and validates it.
func Load(path string) (*Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks names and ranges. Unknown organs are accepted here and fall
// back to the default organ at run time, like on the command line.
func (p *Plan) Validate() error {
	if len(p.Sweeps) == 0 {
		return ErrEmptyPlan
	}
	seen := make(map[string]bool, len(p.Sweeps))
	for i, s := range p.Sweeps {
		if s.Name == "" {
			return fmt.Errorf("sweep %d: missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sweep %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.Step != nil && !(*s.Step > 0) {
			return fmt.Errorf("sweep %q: step must be positive, got %v", s.Name, *s.Step)
		}
		if s.Start != nil && s.Stop != nil && *s.Stop < *s.Start {
			return fmt.Errorf("sweep %q: stop %v before start %v", s.Name, *s.Stop, *s.Start)
		}
	}
	return nil
}

// Apply returns base with the sweep's overrides. The CSV path defaults to
// "<sweep name>.csv" so every sweep of a plan writes its own file.
func (s Sweep) Apply(base config.Config) config.Config {
	cfg := base
	if s.Organ != "" {
		cfg.Organ = s.Organ
	}
	if s.Axis != "" {
		cfg.Scan.Axis = s.Axis
	}
	if s.Start != nil {
		cfg.Scan.Start = *s.Start
	}
	if s.Stop != nil {
		cfg.Scan.Stop = *s.Stop
	}
	if s.Step != nil {
		cfg.Scan.Step = *s.Step
	}
	if s.Threshold != nil {
		cfg.Scan.Threshold = *s.Threshold
	}
	if s.FatLayers != 0 {
		cfg.FatLayers = s.FatLayers
	}
	if s.MuscleLayers != 0 {
		cfg.MuscleLayers = s.MuscleLayers
	}
	if s.Rx != nil {
		cfg.Rx = *s.Rx
	}
	if s.Jam != nil {
		cfg.Jam = *s.Jam
	}
	cfg.Scan.CSV = s.CSV
	if cfg.Scan.CSV == "" {
		cfg.Scan.CSV = s.Name + ".csv"
	}
	return cfg
}
