package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/pubsub"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/ritzau/graphview/pkg/watcher"
	"github.com/ritzau/graphview/pkg/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer to a browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	records, err := loader.LoadFile(cfg.Data)
	if err != nil {
		return err
	}

	reg := metrics.DefaultRegistry()
	ps := sim.NewParticleSystem(cfg.Params())

	var srv *web.Server
	opts := loopOptions(cfg, reg)
	opts.OnFrame = func(f canvas.Frame) { srv.PublishFrame(f) }
	opts.OnDrag = func(c interact.Change) { srv.PublishDrag(c) }
	opts.OnGraph = func(kind string, s pubsub.GraphStatus) { srv.PublishGraph(kind, s) }
	l := loop.New(ps, opts)
	srv = web.NewServer(l, nil, reg)

	workers := []func(context.Context) error{
		func(ctx context.Context) error { return ignoreCanceled(l.Run(ctx)) },
		func(ctx context.Context) error { return srv.Start(ctx, cfg.Port) },
	}
	return supervise(ctx, workers, func(ctx context.Context) error {
		if err := l.Post(ctx, loop.Reload{Source: cfg.Data, Records: records}); err != nil {
			return err
		}

		if cfg.Watch {
			if err := watcher.Watch(ctx, cfg.Data, l); err != nil {
				return fmt.Errorf("watching %s: %w", cfg.Data, err)
			}
			logging.Info("watching for changes", "path", cfg.Data)
		}

		if cfg.OpenBrowser {
			go func() {
				// Wait a moment for server to start
				time.Sleep(500 * time.Millisecond)
				openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
			}()
		}
		return nil
	})
}

// supervise runs the workers until one fails or ctx ends, after setup has
// run against them. A failed setup stops the workers and waits for them
// before returning its error.
func supervise(ctx context.Context, workers []func(context.Context) error, setup func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error { return w(ctx) })
	}

	if err := setup(ctx); err != nil {
		cancel()
		if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
			logging.Debug("worker stopped with error during shutdown", "error", werr)
		}
		return err
	}
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
