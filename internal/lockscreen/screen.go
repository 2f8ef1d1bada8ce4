// Package lockscreen owns the presentation state of the lock screen and
// keeps the unlock indicator on screen in sync with it.
package lockscreen

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/phinze/ringlock/internal/compositor"
	"github.com/phinze/ringlock/internal/indicator"
	"github.com/phinze/ringlock/internal/scheduler"
	"github.com/phinze/ringlock/internal/state"
)

// Display reports the geometry of the screen being locked. It is queried on
// every redraw.
type Display interface {
	// Resolution returns the root window size in pixels.
	Resolution() (width, height int)

	// Displays returns one rectangle per physical display, or nil when
	// unknown.
	Displays() []image.Rectangle

	// DPI returns the pixel density.
	DPI() float64
}

// Options holds the presentation settings.
type Options struct {
	Palette            state.Palette
	Use24Hour          bool
	Indicator          bool
	ShowFailedAttempts bool

	// Background is painted instead of Palette.Background when set.
	Background image.Image
	Tile       bool

	// DPI overrides Display.DPI when positive.
	DPI float64
}

// Config wires a Screen to its collaborators.
type Config struct {
	Options   Options
	Display   Display
	Presenter compositor.Presenter
	Renderer  *indicator.Renderer
	Clock     scheduler.Clock
	Logger    *slog.Logger
}

// queueSize is the number of events buffered ahead of the loop.
const queueSize = 64

// Screen runs the lock screen event loop. All state lives on the loop
// goroutine; the exported methods post work to it.
type Screen struct {
	opts      Options
	display   Display
	presenter compositor.Presenter
	renderer  *indicator.Renderer
	clock     scheduler.Clock
	sched     *scheduler.Scheduler
	logger    *slog.Logger

	// Loop-confined state.
	model state.Model
	shown string

	events    chan func()
	started   chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Screen. Nothing is drawn until Run.
func New(cfg Config) *Screen {
	if cfg.Clock == nil {
		cfg.Clock = scheduler.SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Screen{
		opts:      cfg.Options,
		display:   cfg.Display,
		presenter: cfg.Presenter,
		renderer:  cfg.Renderer,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		events:    make(chan func(), queueSize),
		started:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.sched = scheduler.New(scheduler.Options{
		Clock:  cfg.Clock,
		Label:  indicator.LabelFunc(cfg.Options.Use24Hour),
		Shown:  func() string { return s.shown },
		Fire:   s.redraw,
		Post:   s.post,
		Logger: cfg.Logger.With(slog.String("component", "scheduler")),
	})
	return s
}

// Run draws the first frame, starts the minute tick and processes events
// until ctx is cancelled.
func (s *Screen) Run(ctx context.Context) error {
	s.startOnce.Do(func() { close(s.started) })
	defer s.stopOnce.Do(func() { close(s.done) })

	s.redraw()
	s.sched.Start()
	defer s.sched.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.events:
			fn()
		}
	}
}

// post queues fn for the event loop. It is dropped once the loop has
// exited. Before Run, at most queueSize events are held and the rest are
// dropped, so callers never block on a loop that is not running.
func (s *Screen) post(fn func()) {
	select {
	case s.events <- fn:
		return
	case <-s.done:
		return
	default:
	}

	select {
	case <-s.started:
	default:
		s.logger.Warn("event queue full before start, dropping update")
		return
	}

	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// Update applies changes to the presentation state and redraws. It is the
// only way the state is mutated. Updates made before Run are applied once
// the loop starts.
func (s *Screen) Update(changes ...state.Change) {
	s.post(func() {
		s.model.Apply(changes...)
		s.redraw()
	})
}

// ClearIndicator returns the indicator to idle and redraws.
func (s *Screen) ClearIndicator() {
	s.Update(state.Cleared())
}

// Redraw requests one compositor pass.
func (s *Screen) Redraw() {
	s.post(s.redraw)
}

// Snapshot applies changes and composes a frame without presenting it. It
// must not be called while Run is active.
func (s *Screen) Snapshot(changes ...state.Change) (*image.RGBA, error) {
	s.model.Apply(changes...)
	return s.compose()
}

// redraw composes and presents one frame. Failures are logged; a stale
// frame is preferable to taking the lock down.
func (s *Screen) redraw() {
	s.logger.Debug("redraw",
		slog.String("phase", s.model.Phase.String()),
		slog.String("activity", s.model.Activity.String()))

	frame, err := s.compose()
	if err != nil {
		s.logger.Warn("indicator render failed", slog.Any("error", err))
	}
	if err := s.presenter.Present(frame); err != nil {
		s.logger.Warn("failed to present frame", slog.Any("error", err))
	}
	s.model.Settle()
}

// compose renders the current state into a full-screen frame. The returned
// frame is always usable; the error only reports a missing indicator.
func (s *Screen) compose() (*image.RGBA, error) {
	label := indicator.ClockLabel(s.clock.Now(), s.opts.Use24Hour)
	s.shown = label

	width, height := s.display.Resolution()
	frame := compositor.Frame{
		Width:           width,
		Height:          height,
		Background:      s.opts.Background,
		Tile:            s.opts.Tile,
		BackgroundColor: s.opts.Palette.Background,
		Displays:        s.display.Displays(),
	}

	var err error
	if s.opts.Indicator {
		dpi := s.opts.DPI
		if dpi <= 0 {
			dpi = s.display.DPI()
		}

		var img *image.RGBA
		img, err = s.renderer.Render(indicator.Input{
			Model:              s.model,
			Palette:            s.opts.Palette,
			Clock:              label,
			ShowFailedAttempts: s.opts.ShowFailedAttempts,
		}, indicator.ScaleFor(dpi))
		if err != nil {
			err = fmt.Errorf("failed to render indicator: %w", err)
		}
		if img != nil {
			frame.Indicator = img
		}
	}

	return compositor.Compose(frame), err
}
