package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/phinze/ringlock/internal/lockscreen"
	"github.com/phinze/ringlock/internal/logging"
	"github.com/phinze/ringlock/internal/state"
	"github.com/phinze/ringlock/internal/x11"
)

// demoSteps cycles through the states a locker reports during an unlock
// attempt.
var demoSteps = [][]state.Change{
	{state.WithActivity(state.KeyAccepted)},
	{state.WithActivity(state.KeyAccepted)},
	{state.WithActivity(state.KeyRejected)},
	{state.WithPhase(state.Verifying), state.WithActivity(state.KeyAccepted)},
	{state.WithPhase(state.WrongCredential), state.WithActivity(state.None), state.WithModifiers("Caps Lock")},
	{state.Cleared()},
}

const demoWrongStep = 4

func newPreviewCmd(a *app) *cobra.Command {
	var (
		width    int
		height   int
		demo     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the lock screen in an X11 window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := a.options()
			if err != nil {
				return err
			}

			conn, err := x11.Connect(logging.WithComponent(a.logger, "x11"))
			if err != nil {
				return err
			}
			defer conn.Close()

			win, err := conn.OpenWindow(width, height)
			if err != nil {
				return err
			}
			defer win.Close()

			screen := lockscreen.New(lockscreen.Config{
				Options:   opts,
				Display:   win,
				Presenter: win,
				Renderer:  a.renderer(),
				Logger:    logging.WithComponent(a.logger, "lockscreen"),
			})

			if demo {
				go runDemo(ctx, screen, interval)
			}

			a.logger.Info("preview running, press Ctrl+C to exit")
			return screen.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&width, "width", 800, "window width (0 covers the screen)")
	cmd.Flags().IntVar(&height, "height", 600, "window height (0 covers the screen)")
	cmd.Flags().BoolVar(&demo, "demo", false, "cycle through indicator states")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between demo states")
	return cmd
}

func runDemo(ctx context.Context, screen *lockscreen.Screen, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failed := 0
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n := i % len(demoSteps)
		changes := append([]state.Change(nil), demoSteps[n]...)
		if n == demoWrongStep {
			failed++
			changes = append(changes, state.WithFailedAttempts(failed))
		}
		screen.Update(changes...)
	}
}
