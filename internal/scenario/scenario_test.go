package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wban-jamming-sim/internal/config"
	"wban-jamming-sim/internal/tissue"
)

func TestLoadPlan(t *testing.T) {
	p, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if p.Name != "example" {
		t.Fatalf("unexpected name %s", p.Name)
	}
	if p.Description != "basic test plan" {
		t.Fatalf("unexpected description %s", p.Description)
	}
	if len(p.Sweeps) != 2 {
		t.Fatalf("expected 2 sweeps, got %d", len(p.Sweeps))
	}
	jam := p.Sweeps[1]
	if jam.Threshold == nil || *jam.Threshold != 0.1 || jam.Jam == nil || jam.Jam.Y != 0.2 {
		t.Fatalf("unexpected sweep %+v", jam)
	}
}

func TestApplyOverrides(t *testing.T) {
	p, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	base := config.Default()

	rx := p.Sweeps[0].Apply(base)
	if rx.Scan.CSV != "rx-heart.csv" {
		t.Errorf("default csv = %q", rx.Scan.CSV)
	}
	if rx.Scan.Stop != 1.0 || rx.Scan.Threshold != base.Scan.Threshold || rx.Jam != base.Jam {
		t.Errorf("rx sweep config = %+v", rx.Scan)
	}

	jam := p.Sweeps[1].Apply(base)
	if jam.Organ != "kidney-402" || jam.Scan.Axis != "jammer" || jam.Scan.CSV != "/tmp/jam-kidney.csv" {
		t.Errorf("jam sweep config = %+v", jam)
	}
	if jam.FatLayers != 2 || jam.MuscleLayers != 1 || jam.Jam != (config.Point{X: 5, Y: 0.2}) {
		t.Errorf("jam overrides = %d/%d %+v", jam.FatLayers, jam.MuscleLayers, jam.Jam)
	}
	if base.Scan.CSV != "" || base.Organ != tissue.DefaultOrgan.String() {
		t.Error("Apply must not modify the base config")
	}
	if err := jam.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestValidatePlan(t *testing.T) {
	neg, zero := -1.0, 0.0
	lo, hi := 2.0, 1.0
	tests := []struct {
		name string
		plan Plan
	}{
		{"empty", Plan{}},
		{"missing name", Plan{Sweeps: []Sweep{{}}}},
		{"duplicate", Plan{Sweeps: []Sweep{{Name: "a"}, {Name: "a"}}}},
		{"negative step", Plan{Sweeps: []Sweep{{Name: "a", Step: &neg}}}},
		{"zero step", Plan{Sweeps: []Sweep{{Name: "a", Step: &zero}}}},
		{"reversed", Plan{Sweeps: []Sweep{{Name: "a", Start: &lo, Stop: &hi}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.plan.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if err := (&Plan{}).Validate(); !errors.Is(err, ErrEmptyPlan) {
		t.Fatalf("empty plan err = %v", err)
	}
}

func TestLoadRejectsInvalidPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: x\nsweeps: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrEmptyPlan) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestBuiltInPlans(t *testing.T) {
	plans := BuiltIn()
	for _, name := range []string{"organ-survey", "jammer-standoff", "near-field"} {
		p, ok := plans[name]
		if !ok {
			t.Fatalf("plan %s not found", name)
		}
		if p.Description == "" {
			t.Fatalf("plan %s missing description", name)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("plan %s invalid: %v", name, err)
		}
		for _, s := range p.Sweeps {
			if _, ok := tissue.ParseOrgan(s.Organ); !ok {
				t.Fatalf("plan %s sweep %s: unknown organ %q", name, s.Name, s.Organ)
			}
		}
	}
}
