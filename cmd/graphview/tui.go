package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/ritzau/graphview/pkg/tui"
	"github.com/ritzau/graphview/pkg/watcher"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the viewer in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the UI
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			logging.SetOutput(out)
			defer logging.SetOutput(os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return runTUI(ctx)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the UI runs")
	return cmd
}

func runTUI(ctx context.Context) error {
	records, err := loader.LoadFile(cfg.Data)
	if err != nil {
		return err
	}

	feed := tui.NewFeed()
	opts := loopOptions(cfg, metrics.DefaultRegistry())
	opts.OnFrame = feed.Frame
	opts.OnDrag = feed.Drag
	opts.OnGraph = feed.Graph
	l := loop.New(sim.NewParticleSystem(cfg.Params()), opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	if err := l.Post(ctx, loop.Reload{Source: cfg.Data, Records: records}); err != nil {
		return err
	}
	if cfg.Watch {
		if err := watcher.Watch(ctx, cfg.Data, l); err != nil {
			return fmt.Errorf("watching %s: %w", cfg.Data, err)
		}
	}

	uiErr := tui.Run(ctx, l, feed)
	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return uiErr
}
