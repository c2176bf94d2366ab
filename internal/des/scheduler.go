// Discrete-event scheduler driving the simulated timeline
package des

import (
	"fmt"
	"time"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// MaxHorizon bounds the simulated timeline. Events later than the stop time,
// or than MaxHorizon when no stop is set, stay queued and never fire.
const MaxHorizon = 1_000_000 * time.Second

// Scheduler runs callbacks in simulated-time order on the calling goroutine.
// Events with the same timestamp fire in the order they were scheduled: the
// registration sequence is carried as the vrtime priority.
type Scheduler struct {
	mgr *evtm.EventManager

	// now is the reported clock. engineAt is the time of the last event the
	// event manager dispatched; offsets handed to it are relative to that.
	now      time.Duration
	engineAt time.Duration

	seq     int64
	stopAt  time.Duration
	hasStop bool
	running bool
	fired   uint64
	queued  int

	// held are events queued outside Run or past the stop time. They are
	// handed to the event manager when Run starts.
	held []*event
}

type event struct {
	at  time.Duration
	seq int64
	fn  func()
}

// New returns an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{mgr: evtm.New()}
}

// Now is the current simulated time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Fired is the number of events executed so far.
func (s *Scheduler) Fired() uint64 { return s.fired }

// Pending is the number of queued events.
func (s *Scheduler) Pending() int { return s.queued + len(s.held) }

// Schedule queues fn to run delay after the current time.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		panic(fmt.Sprintf("des: negative delay %s", delay))
	}
	s.ScheduleAt(s.now+delay, fn)
}

// ScheduleAt queues fn at absolute time at. Scheduling in the past panics.
func (s *Scheduler) ScheduleAt(at time.Duration, fn func()) {
	if at < s.now {
		panic(fmt.Sprintf("des: event at %s is before now %s", at, s.now))
	}
	s.seq++
	ev := &event{at: at, seq: s.seq, fn: fn}
	if !s.running || at > s.limit() {
		s.held = append(s.held, ev)
		return
	}
	s.post(ev)
}

// Stop makes Run return once the clock would pass at. Events scheduled exactly at
// the stop time still fire.
func (s *Scheduler) Stop(at time.Duration) {
	s.stopAt = at
	s.hasStop = true
}

// Run dispatches events until the queue drains or the stop time is reached. The
// clock is left at the stop time when one was set.
func (s *Scheduler) Run() {
	s.release()
	if s.queued > 0 {
		s.running = true
		s.mgr.Run(s.limit().Seconds() + 1)
		s.running = false
	}
	if s.hasStop && s.now < s.stopAt {
		s.now = s.stopAt
	}
}

func (s *Scheduler) limit() time.Duration {
	if s.hasStop && s.stopAt < MaxHorizon {
		return s.stopAt
	}
	return MaxHorizon
}

// release hands held events that now fall inside the limit to the event
// manager, in registration order.
func (s *Scheduler) release() {
	lim := s.limit()
	kept := s.held[:0]
	for _, ev := range s.held {
		if ev.at > lim {
			kept = append(kept, ev)
			continue
		}
		s.post(ev)
	}
	for i := len(kept); i < len(s.held); i++ {
		s.held[i] = nil
	}
	s.held = kept
}

func (s *Scheduler) post(ev *event) {
	offset := vrtime.SecondsToTimePri((ev.at - s.engineAt).Seconds(), ev.seq)
	s.mgr.Schedule(s, ev, dispatch, offset)
	s.queued++
}

func dispatch(_ *evtm.EventManager, context any, data any) any {
	s := context.(*Scheduler)
	ev := data.(*event)
	s.queued--
	s.engineAt = ev.at
	s.now = ev.at
	s.fired++
	ev.fn()
	return nil
}
