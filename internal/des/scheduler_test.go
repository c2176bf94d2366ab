package des

import (
	"testing"
	"time"
)

func TestSchedulerOrdersByTime(t *testing.T) {
	s := New()
	var got []int
	s.Schedule(30*time.Millisecond, func() { got = append(got, 3) })
	s.Schedule(10*time.Millisecond, func() { got = append(got, 1) })
	s.Schedule(20*time.Millisecond, func() { got = append(got, 2) })
	s.Run()
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if s.Now() != 30*time.Millisecond {
		t.Fatalf("now = %s", s.Now())
	}
}

func TestSchedulerTieBreakIsRegistrationOrder(t *testing.T) {
	s := New()
	var got []string
	for _, name := range []string{"jam", "tx", "jam2", "tx2"} {
		name := name
		s.ScheduleAt(time.Second, func() { got = append(got, name) })
	}
	s.Run()
	want := []string{"jam", "tx", "jam2", "tx2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSchedulerNestedScheduling(t *testing.T) {
	s := New()
	var at []time.Duration
	s.Schedule(time.Second, func() {
		at = append(at, s.Now())
		s.Schedule(0, func() { at = append(at, s.Now()) })
		s.Schedule(time.Millisecond, func() { at = append(at, s.Now()) })
	})
	s.Run()
	if len(at) != 3 || at[0] != time.Second || at[1] != time.Second || at[2] != time.Second+time.Millisecond {
		t.Fatalf("times = %v", at)
	}
}

func TestSchedulerStop(t *testing.T) {
	s := New()
	fired := 0
	s.ScheduleAt(time.Second, func() { fired++ })
	s.ScheduleAt(2*time.Second, func() { fired++ })
	s.ScheduleAt(3*time.Second, func() { fired++ })
	s.Stop(2 * time.Second)
	s.Run()
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}
	if s.Pending() != 1 {
		t.Fatalf("pending = %d", s.Pending())
	}
	if s.Now() != 2*time.Second {
		t.Fatalf("now = %s", s.Now())
	}
}

func TestSchedulerStopAdvancesIdleClock(t *testing.T) {
	s := New()
	s.Stop(5 * time.Second)
	s.Run()
	if s.Now() != 5*time.Second {
		t.Fatalf("now = %s", s.Now())
	}
}

func TestSchedulePastPanics(t *testing.T) {
	s := New()
	s.ScheduleAt(time.Second, func() {})
	s.Run()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s.ScheduleAt(0, func() {})
}

func TestSchedulerStopScheduledBeforeStopIsHonoured(t *testing.T) {
	s := New()
	var got []time.Duration
	for _, at := range []time.Duration{3 * time.Second, time.Second, 2 * time.Second} {
		s.ScheduleAt(at, func() { got = append(got, s.Now()) })
	}
	s.Stop(time.Second)
	s.Run()
	if len(got) != 1 || got[0] != time.Second {
		t.Fatalf("fired at %v, want [1s]", got)
	}

	s.Stop(5 * time.Second)
	s.Run()
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if len(got) != len(want) {
		t.Fatalf("fired at %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fired at %v, want %v", got, want)
		}
	}
	if s.Pending() != 0 || s.Fired() != 3 {
		t.Fatalf("pending = %d fired = %d", s.Pending(), s.Fired())
	}
}

func TestSchedulerHoldsEventsPastHorizon(t *testing.T) {
	s := New()
	fired := false
	s.ScheduleAt(MaxHorizon+time.Second, func() { fired = true })
	s.Run()
	if fired {
		t.Fatal("event past the horizon fired")
	}
	if s.Pending() != 1 {
		t.Fatalf("pending = %d", s.Pending())
	}
}
