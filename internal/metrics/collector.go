// Package metrics exposes sweep progress as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wban-jamming-sim/internal/sweep"
)

// Collector bundles the sweep metrics. It implements sweep.Writer so it can sit
// next to the CSV and database sinks.
type Collector struct {
	gatherer prometheus.Gatherer

	Points          *prometheus.CounterVec
	PacketsReceived *prometheus.CounterVec

	Coordinate      prometheus.Gauge
	BaselineSuccess prometheus.Gauge
	JamPhaseSuccess prometheus.Gauge
	JamRxPowerDbm   prometheus.Gauge
	BodyRxPowerDbm  prometheus.Gauge
}

// NewCollector registers the sweep metrics against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the existing
// collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	points, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wban_sweep_points_total",
		Help: "Sweep points evaluated, labeled by axis and jammed verdict.",
	}, []string{"axis", "jammed"}), "wban_sweep_points_total")
	if err != nil {
		return nil, err
	}
	packets, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wban_packets_received_total",
		Help: "Packets delivered to the receiver, labeled by experiment phase and source.",
	}, []string{"phase", "source"}), "wban_packets_received_total")
	if err != nil {
		return nil, err
	}

	gauges := make([]prometheus.Gauge, 0, 5)
	for _, opts := range []prometheus.GaugeOpts{
		{Name: "wban_sweep_coordinate_meters", Help: "Coordinate of the most recent sweep point."},
		{Name: "wban_baseline_success_rate", Help: "Phase 1 delivery ratio of the most recent point."},
		{Name: "wban_jam_phase_success_rate", Help: "Phase 2 transmitter delivery ratio of the most recent point."},
		{Name: "wban_jam_rx_power_dbm", Help: "Jammer power at the receiver for the most recent point."},
		{Name: "wban_body_rx_power_dbm", Help: "Transmitter power at the receiver for the most recent point."},
	} {
		g, err := registerGauge(reg, prometheus.NewGauge(opts), opts.Name)
		if err != nil {
			return nil, err
		}
		gauges = append(gauges, g)
	}

	return &Collector{
		gatherer:        gatherer,
		Points:          points,
		PacketsReceived: packets,
		Coordinate:      gauges[0],
		BaselineSuccess: gauges[1],
		JamPhaseSuccess: gauges[2],
		JamRxPowerDbm:   gauges[3],
		BodyRxPowerDbm:  gauges[4],
	}, nil
}

// WriteRecord implements sweep.Writer.
func (c *Collector) WriteRecord(r sweep.Record) error {
	if c == nil {
		return nil
	}
	c.Points.WithLabelValues(r.Axis.String(), fmt.Sprint(r.IsJammed)).Inc()
	c.PacketsReceived.WithLabelValues("baseline", "tx").Add(float64(r.NoJamPacketsRx))
	c.PacketsReceived.WithLabelValues("jamming", "tx").Add(float64(r.JamPacketsRx))
	c.PacketsReceived.WithLabelValues("jamming", "jammer").Add(float64(r.JamPacketsFromJammerRx))

	c.Coordinate.Set(r.ScanCoordinate)
	c.BaselineSuccess.Set(r.NoJamSuccessRate)
	c.JamPhaseSuccess.Set(r.JamSuccessRate)
	c.JamRxPowerDbm.Set(r.JamRxPowerDbm)
	c.BodyRxPowerDbm.Set(r.BodyRxPowerDbm)
	return nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
