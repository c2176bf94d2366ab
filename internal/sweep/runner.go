package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"wban-jamming-sim/internal/experiment"
	"wban-jamming-sim/internal/logging"
)

// ErrInvalidStep is returned when the sweep step is not positive.
var ErrInvalidStep = errors.New("sweep step must be positive")

// Experiment runs one configuration; *experiment.Experiment satisfies it.
type Experiment interface {
	Run(ctx context.Context, cfg experiment.Config) (experiment.RunResult, error)
}

// Params describe one sweep.
type Params struct {
	Axis      Axis
	Start     float64
	Stop      float64
	Step      float64
	Threshold float64
	// Base holds the fixed endpoints; only X of the swept endpoint changes.
	Base experiment.Config
	// SweepID tags every record; a random one is generated when empty.
	SweepID string
}

// Runner drives an Experiment across a coordinate range.
type Runner struct {
	Experiment Experiment
	Writer     Writer
	Now        func() time.Time
}

// NewRunner returns a runner writing to w, which may be nil.
func NewRunner(e Experiment, w Writer) *Runner {
	return &Runner{Experiment: e, Writer: w, Now: time.Now}
}

// ClampThreshold limits t to [0, 1].
func ClampThreshold(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// maxCoordinates caps the number of swept points.
const maxCoordinates = 1 << 20

// Coordinates lists the swept values start + i*step while they stay within
// stop + step/2, so the last nominal point survives rounding.
func Coordinates(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidStep, step)
	}
	if !finite(start) || !finite(stop) {
		return nil, fmt.Errorf("%w: range %g..%g", ErrInvalidStep, start, stop)
	}
	if (stop-start)/step > maxCoordinates {
		return nil, fmt.Errorf("%w: %g over %g..%g gives too many points", ErrInvalidStep, step, start, stop)
	}
	limit := stop + step/2
	var out []float64
	for i := 0; ; i++ {
		c := start + float64(i)*step
		if c > limit {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Run executes the sweep. Cancellation is honoured between points; records
// already written stay valid and the summary covers them.
func (r *Runner) Run(ctx context.Context, p Params) (Summary, error) {
	coords, err := Coordinates(p.Start, p.Stop, p.Step)
	if err != nil {
		return Summary{}, err
	}
	if p.SweepID == "" {
		p.SweepID = uuid.NewString()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	threshold := ClampThreshold(p.Threshold)
	log := logging.FromContext(ctx).With("sweep_id", p.SweepID, "axis", p.Axis)
	log.Info("sweep started", "start", p.Start, "stop", p.Stop, "step", p.Step, "points", len(coords), "threshold", threshold)

	sum := Summary{SweepID: p.SweepID, Axis: p.Axis, Threshold: threshold}
	for i, c := range coords {
		if err := ctx.Err(); err != nil {
			log.Warn("sweep aborted", "completed", sum.Count, "error", err)
			return sum, err
		}
		cfg := p.Base
		cfg.Verbose = false
		switch p.Axis {
		case AxisJam:
			cfg.Jam.X = c
		default:
			cfg.Rx.X = c
		}
		res, err := r.Experiment.Run(ctx, cfg)
		if err != nil {
			return sum, fmt.Errorf("sweep point %d (%g): %w", i, c, err)
		}
		pt := Point{Coordinate: c, Result: res, Jammed: res.Jammed(threshold)}
		rec := NewRecord(pt)
		rec.SweepID = p.SweepID
		rec.Index = i
		rec.Axis = p.Axis
		rec.Threshold = threshold
		rec.Timestamp = now()
		if r.Writer != nil {
			if err := r.Writer.WriteRecord(rec); err != nil {
				return sum, fmt.Errorf("write sweep point %d: %w", i, err)
			}
		}

		sum.Points = append(sum.Points, pt)
		sum.Count++
		if pt.Jammed {
			sum.Jammed++
		} else if !sum.Safe {
			sum.Safe = true
			sum.SafeCoordinate = c
			sum.SafeDistance = rec.Distance(p.Axis)
		}
		log.Debug("sweep point", "index", i, "coordinate", c,
			"no_jam_success_rate", rec.NoJamSuccessRate, "jam_success_rate", rec.JamSuccessRate, "jammed", pt.Jammed)
	}

	if sum.Safe {
		log.Info("sweep finished", "points", sum.Count, "safe_distance", sum.SafeDistance)
	} else {
		log.Info("sweep finished: still jammed throughout the range", "points", sum.Count)
	}
	return sum, nil
}

// Report is the human-readable outcome line.
func (s Summary) Report() string {
	if !s.Safe {
		return fmt.Sprintf("still jammed throughout the range (threshold=%g)", s.Threshold)
	}
	if s.Axis == AxisJam {
		return fmt.Sprintf("minimum jammer-receiver distance without jamming (threshold=%g) ~ %g m", s.Threshold, s.SafeDistance)
	}
	return fmt.Sprintf("first receiver position outside the jamming zone (threshold=%g) at transmitter-receiver distance ~ %g m", s.Threshold, s.SafeDistance)
}
