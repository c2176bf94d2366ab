package experiment

import (
	"wban-jamming-sim/internal/des"
	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/propagation"
	"wban-jamming-sim/internal/radio"
	"wban-jamming-sim/internal/tissue"
)

// ChannelNumber is the WBAN channel every device is tuned to.
const ChannelNumber = 1

// Testbed owns the three endpoints and the loss models shared by every run.
// The transmitter is the only in-body endpoint.
type Testbed struct {
	Positions *mobility.Store
	Body      *propagation.AttenuationModel
	PathLoss  *propagation.LogDistance
	Phy       radio.PhyOptions

	Tx, Rx, Jam mobility.Handle
}

// NewTestbed builds the endpoints with organ as the initial tissue profile.
func NewTestbed(organ tissue.Organ) *Testbed {
	store := mobility.NewStore()
	tb := &Testbed{
		Positions: store,
		Body:      propagation.NewAttenuationModel(organ),
		PathLoss:  propagation.NewLogDistance(store),
		Phy:       radio.DefaultPhyOptions(),
		Tx:        store.Add(mobility.Position{}),
		Rx:        store.Add(mobility.Position{}),
		Jam:       store.Add(mobility.Position{}),
	}
	tb.Body.ClearInBody()
	tb.Body.RegisterInBody(tb.Tx)
	return tb
}

// Loss is the stacked model used by the channel: body loss then path loss.
func (tb *Testbed) Loss() propagation.Chain {
	return propagation.Chain{tb.Body, tb.PathLoss}
}

// radios is the per-run radio state.
type radios struct {
	sched       *des.Scheduler
	channel     *radio.Channel
	tx, rx, jam *radio.Phy
}

func (tb *Testbed) newRadios(s Settings) *radios {
	sched := des.New()
	ch := radio.NewChannel(ChannelNumber, sched, tb.Loss())
	opts := tb.Phy
	opts.SensitivityDbm = s.RxSensitivityDbm
	r := &radios{
		sched:   sched,
		channel: ch,
		tx:      radio.NewPhy(tb.Tx, opts),
		rx:      radio.NewPhy(tb.Rx, opts),
		jam:     radio.NewPhy(tb.Jam, opts),
	}
	ch.Attach(r.tx)
	ch.Attach(r.rx)
	ch.Attach(r.jam)
	r.tx.SetTxPowerDbm(s.TxPowerDbm)
	r.jam.SetTxPowerDbm(s.JamTxPowerDbm())
	r.rx.SetRxSensitivity(s.RxSensitivityDbm)
	return r
}
