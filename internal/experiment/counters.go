package experiment

import "wban-jamming-sim/internal/radio"

// DeliveryCounters tracks sent and received packets of one run. It is owned by a
// single Experiment and only touched from scheduler callbacks.
type DeliveryCounters struct {
	NoJamSent  uint32 `json:"no_jam_sent"`
	NoJamRx    uint32 `json:"no_jam_rx"`
	JamSentTx  uint32 `json:"jam_sent_tx"`
	JamRxTx    uint32 `json:"jam_rx_tx"`
	JamSentJam uint32 `json:"jam_sent_jam"`
	JamRxJam   uint32 `json:"jam_rx_jam"`

	JammingActive bool `json:"-"`
}

// Reset zeroes every counter and clears the jamming flag.
func (c *DeliveryCounters) Reset() {
	*c = DeliveryCounters{}
}

// OnReceive attributes one received packet. Packets without a known source tag
// are ignored; while jamming is off every tagged packet counts as baseline.
// It reports whether a counter was incremented.
func (c *DeliveryCounters) OnReceive(p radio.Packet) bool {
	src, ok := PeekSourceTag(p)
	if !ok || !src.Valid() {
		return false
	}
	switch {
	case !c.JammingActive:
		c.NoJamRx++
	case src == TX:
		c.JamRxTx++
	default:
		c.JamRxJam++
	}
	return true
}
