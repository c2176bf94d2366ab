package experiment

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"wban-jamming-sim/internal/des"
	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/radio"
	"wban-jamming-sim/internal/tissue"
)

func smallConfig() Config {
	s := DefaultSettings()
	s.NoJamPackets = 10
	s.JamPackets = 10
	return Config{
		Tx:       mobility.Position{},
		Rx:       mobility.Position{X: 0.3},
		Jam:      mobility.Position{X: 43},
		Organ:    tissue.Heart402,
		Settings: s,
	}
}

func TestRunJammerFarAway(t *testing.T) {
	e := New(NewTestbed(tissue.Heart402))
	res, err := e.Run(context.Background(), smallConfig())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.NoJamSent != 10 || res.JamSentTx != 10 || res.JamSentJam != 10 {
		t.Fatalf("sent counters = %+v", res.DeliveryCounters)
	}
	if got := res.BaselineSuccessRate(); got != 1 {
		t.Fatalf("baseline success = %v, want 1", got)
	}
	if got := res.JamPhaseSuccessRate(); got != 1 {
		t.Fatalf("jam-phase success = %v, want 1", got)
	}
	if res.JamRxJam != 0 {
		t.Fatalf("jammer packets received = %d", res.JamRxJam)
	}
	if res.Jammed(0.05) {
		t.Fatal("link reported jammed")
	}
	if math.Abs(res.BodyRxPowerDbm-(-22.51215083244131)) > 1e-9 {
		t.Fatalf("body rx power = %v", res.BodyRxPowerDbm)
	}
	if math.Abs(res.BodyLossDb-6.5121508324413115) > 1e-9 {
		t.Fatalf("body loss = %v", res.BodyLossDb)
	}
	if res.JamRxPowerDbm > -98 {
		t.Fatalf("jammer should be below sensitivity, got %v dBm", res.JamRxPowerDbm)
	}
	if want := 2900 * time.Millisecond; res.SimulatedTime != want {
		t.Fatalf("simulated time = %s, want %s", res.SimulatedTime, want)
	}
	if math.Abs(res.TxRxDistance()-0.3) > 1e-12 || math.Abs(res.RxJamDistance()-42.7) > 1e-12 {
		t.Fatalf("distances = %v / %v", res.TxRxDistance(), res.RxJamDistance())
	}
}

func TestRunJammerAdjacentWithBoost(t *testing.T) {
	cfg := smallConfig()
	cfg.Jam = mobility.Position{X: 0.4}
	cfg.Settings.JamBoostDb = 20
	e := New(NewTestbed(tissue.Heart402))
	res, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.BaselineSuccessRate(); got != 1 {
		t.Fatalf("baseline success = %v, want 1", got)
	}
	if got := res.JamPhaseSuccessRate(); got >= 0.05 {
		t.Fatalf("jam-phase success = %v, want < 0.05", got)
	}
	if !res.Jammed(0.05) {
		t.Fatal("link not reported jammed")
	}
	if res.JamRxJam != 10 {
		t.Fatalf("jammer packets received = %d, want 10", res.JamRxJam)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	e := New(NewTestbed(tissue.Heart402))
	cfg := smallConfig()
	cfg.Jam = mobility.Position{X: 10}
	first, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestRunZeroPackets(t *testing.T) {
	cfg := smallConfig()
	cfg.Settings.NoJamPackets = 0
	cfg.Settings.JamPackets = 0
	res, err := New(NewTestbed(tissue.Heart402)).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("zero packets must not be an error: %v", err)
	}
	if res.DeliveryCounters != (DeliveryCounters{}) {
		t.Fatalf("counters = %+v", res.DeliveryCounters)
	}
	if res.BaselineSuccessRate() != 0 || res.JamPhaseSuccessRate() != 0 {
		t.Fatal("rates must be 0 when nothing was sent")
	}
}

func TestRunRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Settings)
		want error
	}{
		{"zero gap", func(s *Settings) { s.PacketGap = 0 }, ErrInvalidGap},
		{"negative gap", func(s *Settings) { s.PacketGap = -time.Millisecond }, ErrInvalidGap},
		{"negative phase 1", func(s *Settings) { s.NoJamPackets = -1 }, ErrNegativePackets},
		{"negative phase 2", func(s *Settings) { s.JamPackets = -5 }, ErrNegativePackets},
		{"gap overflows timeline", func(s *Settings) {
			s.PacketGap = 1000 * time.Hour
			s.NoJamPackets, s.JamPackets = 5000, 5000
		}, ErrTimelineTooLong},
		{"packet counts overflow", func(s *Settings) {
			s.NoJamPackets, s.JamPackets = math.MaxInt, math.MaxInt
		}, ErrTimelineTooLong},
		{"trailing past horizon", func(s *Settings) { s.Trailing = des.MaxHorizon }, ErrTimelineTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mut(&cfg.Settings)
			e := New(NewTestbed(tissue.Heart402))
			transitions := 0
			e.OnStateChange(func(_, _ State) { transitions++ })
			_, err := e.Run(context.Background(), cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if transitions != 0 {
				t.Fatal("run started despite invalid settings")
			}
		})
	}
}

func TestRunStateSequence(t *testing.T) {
	e := New(NewTestbed(tissue.Heart402))
	var seen []State
	e.OnStateChange(func(_, to State) { seen = append(seen, to) })
	if _, err := e.Run(context.Background(), smallConfig()); err != nil {
		t.Fatal(err)
	}
	want := []State{Phase1Warmup, Phase1Active, Phase2Warmup, Phase2Active, Complete}
	if len(seen) != len(want) {
		t.Fatalf("states = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("states = %v, want %v", seen, want)
		}
	}
	if e.State() != Complete {
		t.Fatalf("final state = %s", e.State())
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(NewTestbed(tissue.Heart402)).Run(ctx, smallConfig()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

type otherTag struct{}

func (otherTag) TagName() string { return "other" }

func TestCountersAttribution(t *testing.T) {
	var c DeliveryCounters
	if c.OnReceive(radio.NewPacket(32)) {
		t.Fatal("untagged packet counted")
	}
	p := radio.NewPacket(32)
	p.AddTag(otherTag{})
	if c.OnReceive(p) {
		t.Fatal("foreign tag counted")
	}
	if c.OnReceive(newPacket(32, SourceTag(7))) {
		t.Fatal("unknown source counted")
	}

	c.OnReceive(newPacket(32, TX))
	c.OnReceive(newPacket(32, JAM))
	if c.NoJamRx != 2 {
		t.Fatalf("baseline received = %d, want 2", c.NoJamRx)
	}

	c.JammingActive = true
	c.OnReceive(newPacket(32, TX))
	c.OnReceive(newPacket(32, JAM))
	c.OnReceive(newPacket(32, JAM))
	if c.JamRxTx != 1 || c.JamRxJam != 2 || c.NoJamRx != 2 {
		t.Fatalf("counters = %+v", c)
	}

	c.Reset()
	if c != (DeliveryCounters{}) {
		t.Fatalf("reset left %+v", c)
	}
}

func TestSourceTagBinary(t *testing.T) {
	b, _ := JAM.MarshalBinary()
	var got SourceTag
	if err := got.UnmarshalBinary(b); err != nil || got != JAM {
		t.Fatalf("got %v, %v", got, err)
	}
	if err := got.UnmarshalBinary(nil); err == nil {
		t.Fatal("expected error for empty buffer")
	}
}

func TestSettingsTimeline(t *testing.T) {
	s := DefaultSettings()
	if got := s.Phase2Start(); got != 101500*time.Millisecond {
		t.Fatalf("phase 2 start = %s", got)
	}
	if got := s.StopTime(); got != 202500*time.Millisecond {
		t.Fatalf("stop = %s", got)
	}
}
