// Package scheduler triggers the periodic clock redraw, aligned to minute
// boundaries and resilient to wall-clock jumps.
//
// The timer wakes at least every ResyncInterval, but a wakeup only fires a
// redraw when the clock label changed or the minute boundary passed. Fire
// and "fires" below always refer to redraws, not timer wakeups.
package scheduler

import (
	"log/slog"
	"time"
)

// ResyncInterval caps how long the scheduler sleeps between checks. Go
// timers run on the monotonic clock, so a suspend or a manual clock change
// is only noticed when the timer wakes up.
const ResyncInterval = 5 * time.Second

// Timer is a re-armable one-shot timer.
type Timer interface {
	Reset(d time.Duration) bool
	Stop() bool
}

// Clock provides time-related operations.
type Clock interface {
	// AfterFunc returns a timer calling f after d, or nil when no timer
	// can be provided.
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// SystemClock is the default Clock implementation using the standard library.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Options configures a Scheduler.
type Options struct {
	Clock Clock

	// Label formats the clock text for a point in time.
	Label func(time.Time) string

	// Shown returns the label currently on screen.
	Shown func() string

	// Fire performs one redraw. It is always called through Post.
	Fire func()

	// Post runs f on the owner's event loop. Timer callbacks never touch
	// scheduler state directly.
	Post func(f func())

	Logger *slog.Logger
}

// Scheduler owns the single periodic redraw timer. All methods except the
// timer callback must be called from the owner's event loop.
type Scheduler struct {
	clock  Clock
	label  func(time.Time) string
	shown  func() string
	fire   func()
	post   func(func())
	logger *slog.Logger

	timer    Timer
	started  bool
	disabled bool
	due      time.Time
}

// New creates a Scheduler. The timer is not allocated until Start.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Post == nil {
		opts.Post = func(f func()) { f() }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scheduler{
		clock:  opts.Clock,
		label:  opts.Label,
		shown:  opts.Shown,
		fire:   opts.Fire,
		post:   opts.Post,
		logger: opts.Logger,
	}
}

// Start allocates the timer and arms it. Later calls do nothing: the timer
// is never recreated, and if it could not be allocated the screen simply
// keeps its last clock instead of failing the lock.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true

	now := s.clock.Now()
	s.due = s.Next(now)

	s.timer = s.clock.AfterFunc(s.delay(now), func() {
		s.post(s.wake)
	})
	if s.timer == nil {
		s.disabled = true
		s.logger.Debug("no timer available, periodic redraw disabled")
	}
}

// Stop releases the timer.
func (s *Scheduler) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Enabled reports whether periodic redraws are active.
func (s *Scheduler) Enabled() bool {
	return s.started && !s.disabled
}

// Due returns the next time a redraw is scheduled for.
func (s *Scheduler) Due() time.Time {
	return s.due
}

// Next computes when the next redraw is due. If the label for now already
// differs from the one on screen the redraw is due immediately; otherwise
// it is due at the next minute rollover.
func (s *Scheduler) Next(now time.Time) time.Time {
	if s.label(now) != s.shown() {
		return now
	}
	return nextMinute(now)
}

func nextMinute(now time.Time) time.Time {
	return now.Add(time.Duration(60-now.Second()) * time.Second)
}

// wake runs on the event loop each time the timer expires.
func (s *Scheduler) wake() {
	if s.disabled {
		return
	}

	now := s.clock.Now()
	if s.label(now) != s.shown() || !now.Before(s.due) {
		s.fire()
		// The label just drawn is current, so wait for the rollover.
		s.due = nextMinute(now)
	}
	s.timer.Reset(s.delay(now))
}

func (s *Scheduler) delay(now time.Time) time.Duration {
	d := s.due.Sub(now)
	if d < 0 {
		d = 0
	}
	if d > ResyncInterval {
		d = ResyncInterval
	}
	return d
}
