package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delays  []time.Duration
	stopped bool
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.delays = append(t.delays, d)
	return true
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
	fn     func()
	noTime bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	if c.noTime {
		return nil
	}
	t := &fakeTimer{delays: []time.Duration{d}}
	c.timers = append(c.timers, t)
	c.fn = f
	return t
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *fakeClock) lastDelay() time.Duration {
	t := c.timers[len(c.timers)-1]
	return t.delays[len(t.delays)-1]
}

func minuteLabel(t time.Time) string {
	return t.Format("15:04")
}

// harness wires a Scheduler to a fake screen that records the label it
// drew on every redraw.
type harness struct {
	clock *fakeClock
	shown string
	fires int
	sched *Scheduler
}

func newHarness(start time.Time) *harness {
	h := &harness{clock: &fakeClock{now: start}}
	h.shown = minuteLabel(start)
	h.sched = New(Options{
		Clock: h.clock,
		Label: minuteLabel,
		Shown: func() string { return h.shown },
		Fire: func() {
			h.fires++
			h.shown = minuteLabel(h.clock.Now())
		},
	})
	return h
}

func TestNextAlignsToMinute(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC))

	first := h.sched.Next(h.clock.Now())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC), first)

	// Five seconds later the minute has not changed: still aligned to the
	// rollover, not now+60s.
	h.clock.advance(5 * time.Second)
	now := h.clock.Now()
	next := h.sched.Next(now)
	assert.Equal(t, now.Add(time.Duration(60-now.Second())*time.Second), next)
	assert.Equal(t, first, next)
	assert.NotEqual(t, now.Add(60*time.Second), next)
}

func TestNextImmediateWhenLabelChanged(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 58, 0, time.UTC))
	h.clock.advance(3 * time.Second)

	now := h.clock.Now()
	assert.Equal(t, now, h.sched.Next(now))
}

func TestStartIsLazyAndOnce(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC))
	assert.Empty(t, h.clock.timers)
	assert.False(t, h.sched.Enabled())

	h.sched.Start()
	h.sched.Start()

	require.Len(t, h.clock.timers, 1)
	assert.True(t, h.sched.Enabled())
	assert.Equal(t, ResyncInterval, h.clock.lastDelay())
}

func TestStartWithoutTimerDisables(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC))
	h.clock.noTime = true

	h.sched.Start()
	assert.False(t, h.sched.Enabled())

	// Never retried.
	h.clock.noTime = false
	h.sched.Start()
	assert.Empty(t, h.clock.timers)
	assert.False(t, h.sched.Enabled())
}

func TestWakeFiresOncePerMinute(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 50, 0, time.UTC))
	h.sched.Start()

	assert.Equal(t, 5*time.Second, h.clock.lastDelay())

	h.clock.advance(5 * time.Second)
	h.clock.fn()
	assert.Equal(t, 0, h.fires)
	assert.Equal(t, 5*time.Second, h.clock.lastDelay())

	h.clock.advance(5 * time.Second)
	h.clock.fn()
	assert.Equal(t, 1, h.fires)
	assert.Equal(t, "12:01", h.shown)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 2, 0, 0, time.UTC), h.sched.Due())

	// Remaining wakeups within the minute do not redraw.
	for range 11 {
		h.clock.advance(5 * time.Second)
		h.clock.fn()
	}
	assert.Equal(t, 1, h.fires)

	h.clock.advance(5 * time.Second)
	h.clock.fn()
	assert.Equal(t, 2, h.fires)
	assert.Equal(t, "12:02", h.shown)
}

func TestWakeupsOutnumberRedraws(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	h.sched.Start()

	wakeups := 0
	for h.clock.Now().Before(time.Date(2024, 5, 1, 12, 10, 0, 0, time.UTC)) {
		h.clock.advance(h.clock.lastDelay())
		h.clock.fn()
		wakeups++
	}

	assert.Equal(t, 10*int(time.Minute/ResyncInterval), wakeups)
	assert.Equal(t, 10, h.fires)
	assert.Equal(t, "12:10", h.shown)
}

func TestWakeCatchesUpAfterClockJump(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC))
	h.sched.Start()

	// Suspended for two hours: the first wakeup after resume redraws
	// immediately and realigns.
	h.clock.advance(2*time.Hour + 17*time.Second)
	h.clock.fn()

	assert.Equal(t, 1, h.fires)
	assert.Equal(t, "14:00", h.shown)
	assert.Equal(t, time.Date(2024, 5, 1, 14, 1, 0, 0, time.UTC), h.sched.Due())
}

func TestWakeCatchesUpAfterBackwardJump(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 30, 10, 0, time.UTC))
	h.sched.Start()

	h.clock.now = time.Date(2024, 5, 1, 11, 45, 20, 0, time.UTC)
	h.clock.fn()

	assert.Equal(t, 1, h.fires)
	assert.Equal(t, "11:45", h.shown)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 46, 0, 0, time.UTC), h.sched.Due())
}

func TestStartWhenLabelStale(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 59, 0, time.UTC))
	h.clock.advance(2 * time.Second)

	h.sched.Start()
	assert.Equal(t, time.Duration(0), h.clock.lastDelay())

	h.clock.fn()
	assert.Equal(t, 1, h.fires)
	assert.Equal(t, "12:01", h.shown)
}

func TestWakeGoesThroughPost(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	var posted []func()
	fires := 0

	s := New(Options{
		Clock: clock,
		Label: minuteLabel,
		Shown: func() string { return "stale" },
		Fire:  func() { fires++ },
		Post:  func(f func()) { posted = append(posted, f) },
	})
	s.Start()

	clock.fn()
	assert.Equal(t, 0, fires)
	require.Len(t, posted, 1)

	posted[0]()
	assert.Equal(t, 1, fires)
}

func TestStop(t *testing.T) {
	h := newHarness(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	h.sched.Stop()

	h.sched.Start()
	h.sched.Stop()
	assert.True(t, h.clock.timers[0].stopped)
}
