package radio

import (
	"time"

	"wban-jamming-sim/internal/des"
	"wban-jamming-sim/internal/propagation"
)

// signal is one transmission as seen by one receiver.
type signal struct {
	id       uint64
	pkt      Packet
	powerDbm float64
	powerMw  float64
}

// Channel connects PHYs attached to one frequency channel. Every transmission is
// offered to every other attached PHY at the power given by the loss model.
type Channel struct {
	Number int

	sched  *des.Scheduler
	loss   propagation.LossModel
	phys   []*Phy
	nextID uint64
}

// NewChannel creates a channel using loss for every link.
func NewChannel(number int, sched *des.Scheduler, loss propagation.LossModel) *Channel {
	return &Channel{Number: number, sched: sched, loss: loss}
}

// Attach connects p to the channel.
func (c *Channel) Attach(p *Phy) {
	p.channel = c
	c.phys = append(c.phys, p)
}

// RxPower is the power at which dst would hear src.
func (c *Channel) RxPower(src, dst *Phy) float64 {
	return c.loss.RxPower(src.txPowerDbm, src.handle, dst.handle)
}

func (c *Channel) transmit(src *Phy, pkt Packet, airtime time.Duration) {
	c.nextID++
	id := c.nextID
	if pkt.ID == 0 {
		pkt.ID = id
	}
	var heard []*Phy
	var sigs []*signal
	for _, dst := range c.phys {
		if dst == src {
			continue
		}
		p := c.RxPower(src, dst)
		s := &signal{id: id, pkt: pkt, powerDbm: p, powerMw: dbmToMw(p)}
		dst.signalStart(s)
		heard = append(heard, dst)
		sigs = append(sigs, s)
	}
	c.sched.Schedule(airtime, func() {
		for i, dst := range heard {
			dst.signalEnd(sigs[i])
		}
		src.txDone()
	})
}
