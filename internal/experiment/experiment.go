package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wban-jamming-sim/internal/logging"
	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/radio"
	"wban-jamming-sim/internal/tissue"
)

// State is the phase of a run.
type State int

const (
	Idle State = iota
	Phase1Warmup
	Phase1Active
	Phase2Warmup
	Phase2Active
	Complete
)

var stateNames = [...]string{"idle", "phase1-warmup", "phase1-active", "phase2-warmup", "phase2-active", "complete"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Config is one run: endpoint positions, tissue profile and timing.
type Config struct {
	Tx  mobility.Position
	Rx  mobility.Position
	Jam mobility.Position

	Organ        tissue.Organ
	FatLayers    uint32
	MuscleLayers uint32

	Settings Settings
	// Verbose logs phase banners and progress at Info instead of Debug.
	Verbose bool
}

// Experiment runs the two-phase exchange on a Testbed. Runs are sequential; an
// Experiment must not be shared between goroutines.
type Experiment struct {
	bed      *Testbed
	counters DeliveryCounters
	state    State
	onState  func(from, to State)
}

// New returns an experiment bound to tb.
func New(tb *Testbed) *Experiment {
	return &Experiment{bed: tb}
}

// Testbed returns the shared endpoints and models.
func (e *Experiment) Testbed() *Testbed { return e.bed }

// State returns the current phase.
func (e *Experiment) State() State { return e.state }

// OnStateChange registers a hook called on every phase transition.
func (e *Experiment) OnStateChange(fn func(from, to State)) { e.onState = fn }

func (e *Experiment) setState(s State) {
	from := e.state
	e.state = s
	if e.onState != nil {
		e.onState(from, s)
	}
}

// Run executes one full run and returns its snapshot. Invalid settings are
// rejected before anything is scheduled.
func (e *Experiment) Run(ctx context.Context, cfg Config) (RunResult, error) {
	s := cfg.Settings
	if err := s.Validate(); err != nil {
		return RunResult{}, err
	}
	if !cfg.Organ.Valid() {
		return RunResult{}, fmt.Errorf("unknown organ %d", int(cfg.Organ))
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	log := logging.FromContext(ctx)
	level := slog.LevelDebug
	if cfg.Verbose {
		level = slog.LevelInfo
	}

	bed := e.bed
	e.counters.Reset()
	e.state = Idle
	bed.Body.SetOrgan(cfg.Organ)
	bed.Body.SetFatLayers(cfg.FatLayers)
	bed.Body.SetMuscleLayers(cfg.MuscleLayers)
	bed.Positions.Set(bed.Tx, cfg.Tx)
	bed.Positions.Set(bed.Rx, cfg.Rx)
	bed.Positions.Set(bed.Jam, cfg.Jam)
	e.setState(Phase1Warmup)

	res := RunResult{
		Organ:   cfg.Organ,
		Profile: bed.Body.Profile(),
		Tx:      cfg.Tx,
		Rx:      cfg.Rx,
		Jam:     cfg.Jam,
	}
	res.BodyRxPowerDbm = bed.Body.RxPower(s.TxPowerDbm, bed.Tx, bed.Rx)
	res.BodyLossDb = s.TxPowerDbm - res.BodyRxPowerDbm
	res.JamRxPowerDbm = bed.PathLoss.RxPower(s.JamTxPowerDbm(), bed.Jam, bed.Rx)
	res.JamLossDb = s.JamTxPowerDbm() - res.JamRxPowerDbm

	log.Log(ctx, level, "static link figures",
		"organ", cfg.Organ,
		"tx", cfg.Tx, "rx", cfg.Rx, "jam", cfg.Jam,
		"body_rx_power_dbm", res.BodyRxPowerDbm,
		"body_loss_db", res.BodyLossDb,
		"jam_rx_power_dbm", res.JamRxPowerDbm,
		"jam_loss_db", res.JamLossDb,
		"organ_conductivity", res.Profile.OrganConductivity,
		"organ_permittivity", res.Profile.OrganPermittivity,
		"skin_conductivity", res.Profile.SkinConductivity,
		"skin_permittivity", res.Profile.SkinPermittivity,
	)

	r := bed.newRadios(s)
	r.rx.SetDataIndication(func(p radio.Packet, _ float64) {
		e.counters.OnReceive(p)
	})
	e.schedule(ctx, r, s, log, level)

	r.sched.Stop(s.StopTime())
	r.sched.Run()
	e.setState(Complete)

	res.DeliveryCounters = e.counters
	res.SimulatedTime = r.sched.Now()
	res.Events = r.sched.Fired()

	c := e.counters
	log.Log(ctx, level, "phase 1 summary", "sent", c.NoJamSent, "received", c.NoJamRx, "lost", int64(c.NoJamSent)-int64(c.NoJamRx))
	log.Log(ctx, level, "phase 2 summary", "source", "tx", "sent", c.JamSentTx, "received", c.JamRxTx, "lost", int64(c.JamSentTx)-int64(c.JamRxTx))
	log.Log(ctx, level, "phase 2 summary", "source", "jam", "sent", c.JamSentJam, "received", c.JamRxJam, "lost", int64(c.JamSentJam)-int64(c.JamRxJam))
	return res, nil
}

// schedule queues both phases. In phase 2 the jammer stream is registered before
// the transmitter stream, so at each slot the jammer transmits first.
func (e *Experiment) schedule(ctx context.Context, r *radios, s Settings, log *slog.Logger, level slog.Level) {
	c := &e.counters
	send := func(phy *radio.Phy, src SourceTag) {
		if err := phy.DataRequest(newPacket(s.PayloadBytes, src)); err != nil {
			log.Debug("data request rejected", "source", src, "error", err)
		}
	}
	progress := func(i int) bool {
		return s.PrintEvery > 0 && (i+1)%s.PrintEvery == 0
	}

	r.sched.ScheduleAt(s.WarmUp, func() {
		log.Log(ctx, level, "phase 1 start: baseline without jammer", "packets", s.NoJamPackets, "gap", s.PacketGap)
		r.tx.SetState(radio.TxOn)
		r.rx.SetState(radio.RxOn)
		c.JammingActive = false
		e.setState(Phase1Active)
		if s.NoJamPackets == 0 {
			e.setState(Phase2Warmup)
		}
	})
	for i := 0; i < s.NoJamPackets; i++ {
		r.sched.ScheduleAt(s.FirstSend+time.Duration(i)*s.PacketGap, func() {
			send(r.tx, TX)
			c.NoJamSent++
			if progress(i) {
				log.Log(ctx, level, "phase 1 progress", "sent", c.NoJamSent, "received", c.NoJamRx)
			}
			if i == s.NoJamPackets-1 {
				e.setState(Phase2Warmup)
			}
		})
	}

	start := s.Phase2Start()
	r.sched.ScheduleAt(start, func() {
		log.Log(ctx, level, "phase 2 start: transmitter with jammer", "packets", s.JamPackets, "jam_tx_power_dbm", s.JamTxPowerDbm())
		r.jam.SetState(radio.TxOn)
		c.JammingActive = true
		e.setState(Phase2Active)
	})
	for i := 0; i < s.JamPackets; i++ {
		r.sched.ScheduleAt(start+time.Duration(i)*s.PacketGap, func() {
			send(r.jam, JAM)
			c.JamSentJam++
		})
	}
	for i := 0; i < s.JamPackets; i++ {
		r.sched.ScheduleAt(start+time.Duration(i)*s.PacketGap, func() {
			send(r.tx, TX)
			c.JamSentTx++
			if progress(i) {
				log.Log(ctx, level, "phase 2 progress", "sent", c.JamSentTx, "received_tx", c.JamRxTx, "received_jam", c.JamRxJam)
			}
		})
	}
}
