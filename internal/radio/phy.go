package radio

import (
	"errors"
	"math"
	"time"

	"wban-jamming-sim/internal/mobility"
)

// State is the transceiver state.
type State int

const (
	TrxOff State = iota
	RxOn
	TxOn
)

func (s State) String() string {
	switch s {
	case RxOn:
		return "RX_ON"
	case TxOn:
		return "TX_ON"
	default:
		return "TRX_OFF"
	}
}

var (
	ErrNotTxOn  = errors.New("radio: transceiver not in TX_ON")
	ErrBusy     = errors.New("radio: transmission already in progress")
	ErrDetached = errors.New("radio: phy not attached to a channel")
)

// PhyOptions are the link-level constants of a transceiver.
type PhyOptions struct {
	DataRateBps    float64
	OverheadBytes  int
	NoiseFloorDbm  float64
	MinSinrDb      float64
	SensitivityDbm float64
}

// DefaultPhyOptions models the 402 MHz narrowband mode at 75.9 kbit/s over a
// 300 kHz channel.
func DefaultPhyOptions() PhyOptions {
	return PhyOptions{
		DataRateBps:    75900,
		OverheadBytes:  8,
		NoiseFloorDbm:  -174 + 10*math.Log10(300e3),
		MinSinrDb:      5,
		SensitivityDbm: -98,
	}
}

// PhyStats counts receive outcomes at one PHY.
type PhyStats struct {
	Sent             uint64
	Delivered        uint64
	BelowSensitivity uint64
	Collided         uint64
	ArrivedWhileBusy uint64
}

// DataIndication is invoked for each packet received successfully.
type DataIndication func(pkt Packet, rxPowerDbm float64)

// Phy is a half-duplex transceiver. A packet at or above sensitivity that arrives
// while the receiver is idle locks it; every other signal on the air counts as
// interference and the locked packet is delivered only when its worst SINR stays
// at or above MinSinrDb.
type Phy struct {
	handle  mobility.Handle
	opts    PhyOptions
	channel *Channel

	state      State
	txPowerDbm float64
	txBusy     bool
	indication DataIndication

	active  []*signal
	locked  *signal
	minSinr float64
	stats   PhyStats
}

// NewPhy returns a transceiver at handle in TRX_OFF.
func NewPhy(handle mobility.Handle, opts PhyOptions) *Phy {
	return &Phy{
		handle: handle,
		opts:   opts,
	}
}

func (p *Phy) Handle() mobility.Handle      { return p.handle }
func (p *Phy) State() State                 { return p.state }
func (p *Phy) TxPowerDbm() float64          { return p.txPowerDbm }
func (p *Phy) RxSensitivity() float64       { return p.opts.SensitivityDbm }
func (p *Phy) Stats() PhyStats              { return p.stats }
func (p *Phy) SetTxPowerDbm(dbm float64)    { p.txPowerDbm = dbm }
func (p *Phy) SetRxSensitivity(dbm float64) { p.opts.SensitivityDbm = dbm }

// SetDataIndication registers the receive callback.
func (p *Phy) SetDataIndication(fn DataIndication) { p.indication = fn }

// SetState switches the transceiver. Leaving RX_ON abandons a locked packet.
func (p *Phy) SetState(s State) {
	if p.state == RxOn && s != RxOn {
		p.locked = nil
	}
	p.state = s
}

// Airtime is the on-air duration of a payload of size bytes.
func (p *Phy) Airtime(size int) time.Duration {
	bits := float64(size+p.opts.OverheadBytes) * 8
	return time.Duration(bits / p.opts.DataRateBps * float64(time.Second))
}

// DataRequest puts pkt on the air.
func (p *Phy) DataRequest(pkt Packet) error {
	if p.channel == nil {
		return ErrDetached
	}
	if p.state != TxOn {
		return ErrNotTxOn
	}
	if p.txBusy {
		return ErrBusy
	}
	p.txBusy = true
	p.stats.Sent++
	p.channel.transmit(p, pkt, p.Airtime(pkt.Size))
	return nil
}

func (p *Phy) txDone() { p.txBusy = false }

func (p *Phy) signalStart(s *signal) {
	p.active = append(p.active, s)
	switch {
	case p.state != RxOn:
	case p.locked != nil:
		p.stats.ArrivedWhileBusy++
	case s.powerDbm < p.opts.SensitivityDbm:
		p.stats.BelowSensitivity++
	default:
		p.locked = s
		p.minSinr = math.Inf(1)
	}
	p.updateSinr()
}

func (p *Phy) signalEnd(s *signal) {
	for i, a := range p.active {
		if a == s {
			p.active = append(p.active[:i], p.active[i+1:]...)
			break
		}
	}
	if p.locked != s {
		return
	}
	p.locked = nil
	if p.minSinr < p.opts.MinSinrDb {
		p.stats.Collided++
		return
	}
	p.stats.Delivered++
	if p.indication != nil {
		p.indication(s.pkt, s.powerDbm)
	}
}

func (p *Phy) updateSinr() {
	if p.locked == nil {
		return
	}
	interference := dbmToMw(p.opts.NoiseFloorDbm)
	for _, s := range p.active {
		if s != p.locked {
			interference += s.powerMw
		}
	}
	sinr := 10 * math.Log10(p.locked.powerMw/interference)
	if sinr < p.minSinr {
		p.minSinr = sinr
	}
}

func dbmToMw(dbm float64) float64 { return math.Pow(10, dbm/10) }
