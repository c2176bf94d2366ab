// Propagation loss models for the body-area channel
package propagation

import (
	"math"

	"wban-jamming-sim/internal/mobility"
)

// LossModel turns a transmit power into a received power for one link.
type LossModel interface {
	RxPower(txPowerDbm float64, a, b mobility.Handle) float64
}

// Chain applies several loss models in order, each one fed with the
// previous model's output.
type Chain []LossModel

// RxPower implements LossModel.
func (c Chain) RxPower(txPowerDbm float64, a, b mobility.Handle) float64 {
	p := txPowerDbm
	for _, m := range c {
		p = m.RxPower(p, a, b)
	}
	return p
}

// Log-distance defaults, matching the common ns-3 configuration.
const (
	DefaultExponent          = 3.0
	DefaultReferenceDistance = 1.0
	DefaultReferenceLossDb   = 46.6777
)

// LogDistance is the free-space style path loss L = L0 + 10*n*log10(d/d0).
// Links shorter than the reference distance only see the reference loss.
type LogDistance struct {
	Positions         *mobility.Store
	Exponent          float64
	ReferenceDistance float64
	ReferenceLossDb   float64
}

// NewLogDistance returns a model with the default exponent and reference point.
func NewLogDistance(store *mobility.Store) *LogDistance {
	return &LogDistance{
		Positions:         store,
		Exponent:          DefaultExponent,
		ReferenceDistance: DefaultReferenceDistance,
		ReferenceLossDb:   DefaultReferenceLossDb,
	}
}

// LossDb returns the path loss for a link of the given length.
func (m *LogDistance) LossDb(distance float64) float64 {
	if distance <= m.ReferenceDistance {
		return m.ReferenceLossDb
	}
	return m.ReferenceLossDb + 10*m.Exponent*math.Log10(distance/m.ReferenceDistance)
}

// RxPower implements LossModel.
func (m *LogDistance) RxPower(txPowerDbm float64, a, b mobility.Handle) float64 {
	return txPowerDbm - m.LossDb(m.Positions.Distance(a, b))
}
