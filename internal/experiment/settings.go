package experiment

import (
	"errors"
	"fmt"
	"time"

	"wban-jamming-sim/internal/des"
)

var (
	ErrInvalidGap      = errors.New("packet gap must be positive")
	ErrNegativePackets = errors.New("packet counts must not be negative")
	ErrTimelineTooLong = errors.New("timeline exceeds the simulation horizon")
)

// Settings are the timing and radio constants of a run.
type Settings struct {
	NoJamPackets int           `json:"no_jam_packets" yaml:"no_jam_packets"`
	JamPackets   int           `json:"jam_packets" yaml:"jam_packets"`
	PacketGap    time.Duration `json:"packet_gap" yaml:"packet_gap"`
	WarmUp       time.Duration `json:"warm_up" yaml:"warm_up"`
	FirstSend    time.Duration `json:"first_send" yaml:"first_send"`
	PhaseGap     time.Duration `json:"phase_gap" yaml:"phase_gap"`
	Trailing     time.Duration `json:"trailing" yaml:"trailing"`
	PrintEvery   int           `json:"print_every" yaml:"print_every"`

	PayloadBytes     int     `json:"payload_bytes" yaml:"payload_bytes"`
	TxPowerDbm       float64 `json:"tx_power_dbm" yaml:"tx_power_dbm"`
	JamBoostDb       float64 `json:"jam_boost_db" yaml:"jam_boost_db"`
	RxSensitivityDbm float64 `json:"rx_sensitivity_dbm" yaml:"rx_sensitivity_dbm"`
}

// DefaultSettings returns 5000 packets per phase every 20 ms at -16 dBm.
func DefaultSettings() Settings {
	return Settings{
		NoJamPackets:     5000,
		JamPackets:       5000,
		PacketGap:        20 * time.Millisecond,
		WarmUp:           200 * time.Millisecond,
		FirstSend:        500 * time.Millisecond,
		PhaseGap:         time.Second,
		Trailing:         time.Second,
		PrintEvery:       500,
		PayloadBytes:     32,
		TxPowerDbm:       -16,
		JamBoostDb:       0,
		RxSensitivityDbm: -98,
	}
}

// Validate rejects settings that cannot be scheduled.
func (s Settings) Validate() error {
	if s.PacketGap <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGap, s.PacketGap)
	}
	if s.NoJamPackets < 0 || s.JamPackets < 0 {
		return fmt.Errorf("%w: %d/%d", ErrNegativePackets, s.NoJamPackets, s.JamPackets)
	}
	if s.PayloadBytes <= 0 {
		return fmt.Errorf("payload must be positive, got %d", s.PayloadBytes)
	}
	if s.WarmUp < 0 || s.FirstSend < 0 || s.PhaseGap < 0 || s.Trailing < 0 {
		return errors.New("phase delays must not be negative")
	}
	return s.checkTimeline()
}

// checkTimeline keeps StopTime within des.MaxHorizon without overflowing.
func (s Settings) checkTimeline() error {
	room := des.MaxHorizon
	if s.WarmUp > room {
		return fmt.Errorf("%w: warm-up %s", ErrTimelineTooLong, s.WarmUp)
	}
	for _, d := range []time.Duration{s.FirstSend, s.PhaseGap, s.Trailing} {
		if d > room {
			return fmt.Errorf("%w: delays exceed %s", ErrTimelineTooLong, des.MaxHorizon)
		}
		room -= d
	}
	slots := int64(room / s.PacketGap)
	if int64(s.NoJamPackets) > slots || int64(s.JamPackets) > slots-int64(s.NoJamPackets) {
		return fmt.Errorf("%w: %d+%d packets every %s", ErrTimelineTooLong, s.NoJamPackets, s.JamPackets, s.PacketGap)
	}
	return nil
}

// JamTxPowerDbm is the jammer transmit power.
func (s Settings) JamTxPowerDbm() float64 { return s.TxPowerDbm + s.JamBoostDb }

// Phase2Start is when the jammer is armed.
func (s Settings) Phase2Start() time.Duration {
	return s.FirstSend + time.Duration(s.NoJamPackets)*s.PacketGap + s.PhaseGap
}

// StopTime is the end of the run.
func (s Settings) StopTime() time.Duration {
	return s.Phase2Start() + time.Duration(s.JamPackets)*s.PacketGap + s.Trailing
}
