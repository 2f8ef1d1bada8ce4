package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phinze/ringlock/internal/background"
	"github.com/phinze/ringlock/internal/config"
	"github.com/phinze/ringlock/internal/indicator"
	"github.com/phinze/ringlock/internal/lockscreen"
	"github.com/phinze/ringlock/internal/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs after flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "ringlock",
		Short:         "Unlock indicator renderer for screen lockers",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(os.Stderr, cfg.Debug)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default "+config.DefaultDir()+"/config.yaml)")
	if err := config.BindFlags(a.v, root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.AddCommand(
		newRenderCmd(a),
		newPreviewCmd(a),
		newConfigCmd(a),
	)
	return root
}

// options converts the loaded config into screen options, loading the
// background image when one is configured.
func (a *app) options() (lockscreen.Options, error) {
	opts := lockscreen.Options{
		Palette:            a.cfg.Palette(),
		Use24Hour:          a.cfg.Use24Hour,
		Indicator:          a.cfg.UnlockIndicator,
		ShowFailedAttempts: a.cfg.ShowFailedAttempts,
		Tile:               a.cfg.Tile,
		DPI:                a.cfg.DPI,
	}
	if a.cfg.Image != "" {
		img, err := background.Load(a.cfg.Image)
		if err != nil {
			return lockscreen.Options{}, fmt.Errorf("failed to load background: %w", err)
		}
		opts.Background = img
	}
	return opts, nil
}

func (a *app) renderer() *indicator.Renderer {
	now := uint64(time.Now().UnixNano())
	rnd := rand.New(rand.NewPCG(now, uint64(os.Getpid())))
	return indicator.New(rnd, logging.WithComponent(a.logger, "indicator"))
}
