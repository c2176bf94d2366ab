package sweep

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"wban-jamming-sim/internal/experiment"
	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/propagation"
	"wban-jamming-sim/internal/tissue"
)

// stubExperiment records every config and clears the link once the swept
// coordinate reaches clearAt.
type stubExperiment struct {
	configs []experiment.Config
	clearAt float64
	axis    Axis
	after   func(n int)
}

func (s *stubExperiment) Run(_ context.Context, cfg experiment.Config) (experiment.RunResult, error) {
	s.configs = append(s.configs, cfg)
	c := cfg.Rx.X
	if s.axis == AxisJam {
		c = cfg.Jam.X
	}
	res := experiment.RunResult{Tx: cfg.Tx, Rx: cfg.Rx, Jam: cfg.Jam, Organ: cfg.Organ}
	res.NoJamSent, res.NoJamRx = 100, 100
	res.JamSentTx, res.JamSentJam = 100, 100
	if c >= s.clearAt {
		res.JamRxTx = 100
	} else {
		res.JamRxJam = 100
	}
	if s.after != nil {
		s.after(len(s.configs))
	}
	return res, nil
}

func baseConfig() experiment.Config {
	s := experiment.DefaultSettings()
	s.NoJamPackets = 10
	s.JamPackets = 10
	return experiment.Config{
		Tx:       mobility.Position{},
		Rx:       mobility.Position{X: 0.3, Y: 0.1},
		Jam:      mobility.Position{X: 43, Y: 0.2},
		Organ:    tissue.Heart402,
		Settings: s,
	}
}

func TestCoordinatesIncludeStop(t *testing.T) {
	coords, err := Coordinates(0.1, 2.0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(coords) != 20 {
		t.Fatalf("got %d points, want 20", len(coords))
	}
	if last := coords[len(coords)-1]; math.Abs(last-2.0) > 1e-9 {
		t.Fatalf("last coordinate = %v, want 2.0", last)
	}
	for i := 1; i < len(coords); i++ {
		if coords[i] <= coords[i-1] {
			t.Fatalf("coordinates not increasing at %d: %v", i, coords)
		}
	}
}

func TestCoordinatesEdgeCases(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step float64
		want              int
		err               bool
	}{
		{"single point", 1, 1, 0.5, 1, false},
		{"stop before start", 2, 1, 0.5, 0, false},
		{"zero step", 0, 1, 0, 0, true},
		{"negative step", 0, 1, -0.1, 0, true},
		{"NaN step", 0, 1, math.NaN(), 0, true},
		{"infinite step", 0.1, 2, math.Inf(1), 0, true},
		{"NaN start", math.NaN(), 2, 0.1, 0, true},
		{"infinite stop", 0, math.Inf(1), 0.1, 0, true},
		{"too many points", 0, 1e9, 1e-3, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coordinates(tt.start, tt.stop, tt.step)
			if tt.err {
				if !errors.Is(err, ErrInvalidStep) {
					t.Fatalf("err = %v, want ErrInvalidStep", err)
				}
				return
			}
			if err != nil || len(got) != tt.want {
				t.Fatalf("got %v, %v", got, err)
			}
		})
	}
}

func TestRunnerMovesOnlySweptAxis(t *testing.T) {
	for _, axis := range []Axis{AxisRx, AxisJam} {
		t.Run(axis.String(), func(t *testing.T) {
			stub := &stubExperiment{clearAt: 100, axis: axis}
			r := NewRunner(stub, nil)
			base := baseConfig()
			base.Verbose = true
			if _, err := r.Run(context.Background(), Params{Axis: axis, Start: 0.1, Stop: 2.0, Step: 0.1, Threshold: 0.05, Base: base}); err != nil {
				t.Fatal(err)
			}
			for i, cfg := range stub.configs {
				if cfg.Verbose {
					t.Fatal("sweep points must run quietly")
				}
				if cfg.Tx != base.Tx || cfg.Rx.Y != base.Rx.Y || cfg.Jam.Y != base.Jam.Y {
					t.Fatalf("point %d changed fixed coordinates: %+v", i, cfg)
				}
				moved, fixed := cfg.Rx.X, cfg.Jam.X
				wantFixed := base.Jam.X
				if axis == AxisJam {
					moved, fixed = cfg.Jam.X, cfg.Rx.X
					wantFixed = base.Rx.X
				}
				if fixed != wantFixed {
					t.Fatalf("point %d moved the fixed endpoint", i)
				}
				if math.Abs(moved-(0.1+float64(i)*0.1)) > 1e-9 {
					t.Fatalf("point %d coordinate = %v", i, moved)
				}
			}
		})
	}
}

func TestRunnerInvalidStepWritesNothing(t *testing.T) {
	rec := NewRecorder()
	stub := &stubExperiment{}
	_, err := NewRunner(stub, rec).Run(context.Background(), Params{Start: 0, Stop: 1, Step: 0, Base: baseConfig()})
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v", err)
	}
	if len(stub.configs) != 0 || len(rec.Records()) != 0 {
		t.Fatal("sweep did work despite invalid step")
	}
}

func TestRunnerReportsFirstSafePoint(t *testing.T) {
	stub := &stubExperiment{clearAt: 1.0 - 1e-9}
	rec := NewRecorder()
	sum, err := NewRunner(stub, rec).Run(context.Background(), Params{Axis: AxisRx, Start: 0.1, Stop: 2.0, Step: 0.1, Threshold: 0.05, Base: baseConfig()})
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Safe {
		t.Fatal("expected a safe point")
	}
	if math.Abs(sum.SafeCoordinate-1.0) > 1e-9 {
		t.Fatalf("safe coordinate = %v", sum.SafeCoordinate)
	}
	want := math.Hypot(sum.SafeCoordinate, 0.1)
	if math.Abs(sum.SafeDistance-want) > 1e-9 {
		t.Fatalf("safe distance = %v, want tx-rx distance %v", sum.SafeDistance, want)
	}
	records := rec.Records()
	if len(records) != 20 || sum.Count != 20 || sum.Jammed != 9 {
		t.Fatalf("records=%d count=%d jammed=%d", len(records), sum.Count, sum.Jammed)
	}
	if d, ok := SafeDistance(records, AxisRx); !ok || d != sum.SafeDistance {
		t.Fatalf("SafeDistance = %v %v", d, ok)
	}
	for i, r := range records {
		if r.Index != i || r.SweepID != sum.SweepID || r.SweepID == "" {
			t.Fatalf("record %d metadata = %+v", i, r)
		}
	}
}

func TestRunnerStillJammed(t *testing.T) {
	stub := &stubExperiment{clearAt: 100}
	sum, err := NewRunner(stub, nil).Run(context.Background(), Params{Start: 0.1, Stop: 0.5, Step: 0.1, Threshold: 0.05, Base: baseConfig()})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Safe {
		t.Fatal("no point should be safe")
	}
	if !strings.Contains(sum.Report(), "still jammed throughout the range") {
		t.Fatalf("report = %q", sum.Report())
	}
}

func TestRunnerCancellationKeepsWrittenRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := &stubExperiment{clearAt: 100, after: func(n int) {
		if n == 3 {
			cancel()
		}
	}}
	var buf bytes.Buffer
	cw, err := NewCSVWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := NewRunner(stub, cw).Run(ctx, Params{Start: 0.1, Stop: 2.0, Step: 0.1, Base: baseConfig()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if sum.Count != 3 {
		t.Fatalf("count = %d, want 3", sum.Count)
	}
	records, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("partial CSV unreadable: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want 3", len(records))
	}
}

func TestClampThreshold(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.05: 0.05, 2: 1} {
		if got := ClampThreshold(in); got != want {
			t.Errorf("ClampThreshold(%v) = %v, want %v", in, got, want)
		}
	}
}

// The jammer stops defeating the link once its received power drops below the
// receiver sensitivity; the reported distance must land within one step of it.
func TestRunnerSafeDistanceMatchesCrossover(t *testing.T) {
	base := baseConfig()
	base.Rx = mobility.Position{X: 0.3}
	base.Jam = mobility.Position{X: 10}
	s := base.Settings
	crossover := math.Pow(10, (s.JamTxPowerDbm()-propagation.DefaultReferenceLossDb-s.RxSensitivityDbm)/(10*propagation.DefaultExponent))

	e := experiment.New(experiment.NewTestbed(tissue.Heart402))
	const step = 1.0
	sum, err := NewRunner(e, nil).Run(context.Background(), Params{Axis: AxisJam, Start: 10, Stop: 20, Step: step, Threshold: 0.05, Base: base})
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Safe {
		t.Fatal("expected the link to clear inside the range")
	}
	if sum.SafeDistance < crossover || sum.SafeDistance >= crossover+step {
		t.Fatalf("safe distance %v not within one step past crossover %v", sum.SafeDistance, crossover)
	}
	for _, p := range sum.Points {
		d := p.Result.RxJamDistance()
		if d < crossover && !p.Jammed {
			t.Fatalf("point at %v m inside crossover not jammed", d)
		}
		if d > crossover && p.Jammed {
			t.Fatalf("point at %v m beyond crossover still jammed", d)
		}
	}
}

func TestParseAxis(t *testing.T) {
	tests := map[string]Axis{"rx": AxisRx, "RX": AxisRx, "": AxisRx, "jam": AxisJam, "Jammer": AxisJam, "J": AxisJam, "other": AxisRx}
	for in, want := range tests {
		if got := ParseAxis(in); got != want {
			t.Errorf("ParseAxis(%q) = %v, want %v", in, got, want)
		}
	}
}
