package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phinze/ringlock/internal/lockscreen"
	"github.com/phinze/ringlock/internal/logging"
	"github.com/phinze/ringlock/internal/scheduler"
	"github.com/phinze/ringlock/internal/state"
	"github.com/phinze/ringlock/internal/x11"
)

// staticDisplay describes an offscreen frame.
type staticDisplay struct {
	width, height int
}

func (d staticDisplay) Resolution() (int, int)      { return d.width, d.height }
func (d staticDisplay) Displays() []image.Rectangle { return nil }
func (d staticDisplay) DPI() float64                { return x11.DefaultDPI }

// fixedClock pins the clock label and never schedules redraws.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) AfterFunc(time.Duration, func()) scheduler.Timer { return nil }
func (c fixedClock) Now() time.Time                                 { return c.t }

func newRenderCmd(a *app) *cobra.Command {
	var (
		out       string
		width     int
		height    int
		phase     string
		activity  string
		modifiers string
		failed    int
		at        string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one lock screen frame to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := state.ParsePhase(phase)
			if !ok {
				return fmt.Errorf("unknown phase %q", phase)
			}
			act, ok := state.ParseActivity(activity)
			if !ok {
				return fmt.Errorf("unknown activity %q", activity)
			}
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}

			var clock scheduler.Clock = fixedClock{t: time.Now()}
			if at != "" {
				t, err := time.ParseInLocation("15:04", at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
				clock = fixedClock{t: t}
			}

			opts, err := a.options()
			if err != nil {
				return err
			}

			screen := lockscreen.New(lockscreen.Config{
				Options:  opts,
				Display:  staticDisplay{width: width, height: height},
				Renderer: a.renderer(),
				Clock:    clock,
				Logger:   logging.WithComponent(a.logger, "lockscreen"),
			})

			frame, err := screen.Snapshot(
				state.WithPhase(p),
				state.WithActivity(act),
				state.WithModifiers(modifiers),
				state.WithFailedAttempts(failed),
			)
			if err != nil {
				a.logger.Warn("frame rendered without indicator", "error", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			if err := png.Encode(f, frame); err != nil {
				return fmt.Errorf("failed to encode PNG: %w", err)
			}
			a.logger.Info("frame written", "path", out, "width", width, "height", height)
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG path")
	cmd.Flags().IntVar(&width, "width", 1920, "frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 1080, "frame height in pixels")
	cmd.Flags().StringVar(&phase, "phase", "idle", "authentication phase (idle, verifying, wrong, lock-failed)")
	cmd.Flags().StringVar(&activity, "activity", "none", "input activity (none, key, backspace)")
	cmd.Flags().StringVar(&modifiers, "modifiers", "", "modifier label shown after a wrong password")
	cmd.Flags().IntVar(&failed, "failed-attempts", 0, "failed attempt count")
	cmd.Flags().StringVar(&at, "at", "", "clock time as HH:MM (default now)")
	return cmd
}
