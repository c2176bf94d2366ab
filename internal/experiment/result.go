package experiment

import (
	"time"

	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/tissue"
)

// RunResult is the snapshot taken when a run completes.
type RunResult struct {
	DeliveryCounters

	BodyRxPowerDbm float64        `json:"body_rx_power_dbm"`
	BodyLossDb     float64        `json:"body_loss_db"`
	JamRxPowerDbm  float64        `json:"jam_rx_power_dbm"`
	JamLossDb      float64        `json:"jam_loss_db"`
	Organ          tissue.Organ   `json:"organ"`
	Profile        tissue.Profile `json:"profile"`

	Tx  mobility.Position `json:"tx"`
	Rx  mobility.Position `json:"rx"`
	Jam mobility.Position `json:"jam"`

	SimulatedTime time.Duration `json:"simulated_time"`
	Events        uint64        `json:"events"`
}

func rate(rx, sent uint32) float64 {
	if sent == 0 {
		return 0
	}
	return float64(rx) / float64(sent)
}

// BaselineSuccessRate is the phase-1 delivery ratio, 0 when nothing was sent.
func (r RunResult) BaselineSuccessRate() float64 { return rate(r.NoJamRx, r.NoJamSent) }

// JamPhaseSuccessRate is the phase-2 transmitter delivery ratio.
func (r RunResult) JamPhaseSuccessRate() float64 { return rate(r.JamRxTx, r.JamSentTx) }

// JammerDeliveryRate is the share of jammer packets the receiver locked onto.
func (r RunResult) JammerDeliveryRate() float64 { return rate(r.JamRxJam, r.JamSentJam) }

// Jammed reports whether the phase-2 transmitter success rate is at or below threshold.
func (r RunResult) Jammed(threshold float64) bool {
	return r.JamPhaseSuccessRate() <= threshold
}

func (r RunResult) TxRxDistance() float64  { return mobility.Distance(r.Tx, r.Rx) }
func (r RunResult) RxJamDistance() float64 { return mobility.Distance(r.Rx, r.Jam) }
