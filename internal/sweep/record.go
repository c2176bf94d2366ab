package sweep

import (
	"math"
	"time"

	"wban-jamming-sim/internal/experiment"
)

// Point is one swept coordinate and the run it produced.
type Point struct {
	Coordinate float64
	Result     experiment.RunResult
	Jammed     bool
}

// Record is the flat row emitted per point. The first fifteen fields are the CSV
// columns; the rest is metadata carried by the other sinks.
type Record struct {
	RxX                    float64 `json:"rx_x"`
	RxY                    float64 `json:"rx_y"`
	TxRxDistance           float64 `json:"tx_rx_distance"`
	RxJamDistance          float64 `json:"rx_jam_distance"`
	ScanCoordinate         float64 `json:"scan_coordinate"`
	BodyLossDb             float64 `json:"body_loss_db"`
	BodyRxPowerDbm         float64 `json:"body_rx_power_dbm"`
	JamRxPowerDbm          float64 `json:"jam_rx_power_dbm"`
	JamLossDb              float64 `json:"jam_loss_db"`
	NoJamSuccessRate       float64 `json:"no_jam_success_rate"`
	JamSuccessRate         float64 `json:"jam_success_rate"`
	IsJammed               bool    `json:"is_jammed"`
	NoJamPacketsRx         uint32  `json:"no_jam_packets_rx"`
	JamPacketsRx           uint32  `json:"jam_packets_rx"`
	JamPacketsFromJammerRx uint32  `json:"jam_packets_from_jammer_rx"`

	SweepID   string    `json:"sweep_id,omitempty"`
	Index     int       `json:"index"`
	Axis      Axis      `json:"axis"`
	Organ     string    `json:"organ,omitempty"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord flattens p.
func NewRecord(p Point) Record {
	r := p.Result
	return Record{
		RxX:                    r.Rx.X,
		RxY:                    r.Rx.Y,
		TxRxDistance:           r.TxRxDistance(),
		RxJamDistance:          r.RxJamDistance(),
		ScanCoordinate:         p.Coordinate,
		BodyLossDb:             r.BodyLossDb,
		BodyRxPowerDbm:         r.BodyRxPowerDbm,
		JamRxPowerDbm:          r.JamRxPowerDbm,
		JamLossDb:              r.JamLossDb,
		NoJamSuccessRate:       r.BaselineSuccessRate(),
		JamSuccessRate:         r.JamPhaseSuccessRate(),
		IsJammed:               p.Jammed,
		NoJamPacketsRx:         r.NoJamRx,
		JamPacketsRx:           r.JamRxTx,
		JamPacketsFromJammerRx: r.JamRxJam,
		Organ:                  r.Organ.String(),
	}
}

// Distance is the figure reported as safe distance for axis: receiver-jammer
// when the jammer moves, transmitter-receiver otherwise.
func (r Record) Distance(axis Axis) float64 {
	if axis == AxisJam {
		return r.RxJamDistance
	}
	return r.TxRxDistance
}

// Summary describes a finished sweep.
type Summary struct {
	SweepID   string  `json:"sweep_id"`
	Axis      Axis    `json:"axis"`
	Threshold float64 `json:"threshold"`
	Points    []Point `json:"-"`
	Count     int     `json:"points"`
	Jammed    int     `json:"jammed"`

	// Safe is false when every point stayed jammed.
	Safe           bool    `json:"safe"`
	SafeCoordinate float64 `json:"safe_coordinate,omitempty"`
	SafeDistance   float64 `json:"safe_distance,omitempty"`
}

// SafeDistance scans records in order and returns the distance of the first one
// that is not jammed. ok is false when there is none.
func SafeDistance(records []Record, axis Axis) (distance float64, ok bool) {
	for _, r := range records {
		if !r.IsJammed {
			return r.Distance(axis), true
		}
	}
	return math.NaN(), false
}
