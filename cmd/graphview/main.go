package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/ritzau/graphview/pkg/config"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/render"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphview",
		Short: "Interactive force-directed graph viewer",
		Long: "graphview lays out a graph document with a force-directed simulation\n" +
			"and lets you drag its nodes around in a browser or a terminal.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			cfg = c
			setupLogging(cfg)
			return nil
		},
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(),
		tuiCmd(),
		renderCmd(),
		inspectCmd(),
	)
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(c *config.Config) {
	level := c.LogLevel()
	if c.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
}

// loopOptions translates the configuration into loop options
func loopOptions(c *config.Config, reg *metrics.Registry) loop.Options {
	return loop.Options{
		Width:  c.Width,
		Height: c.Height,
		FPS:    c.FPS,
		Render: render.Options{
			Padding:  c.Padding,
			NodeSize: c.NodeSize,
		},
		Interact: interact.Options{
			MaxGrabDistance: c.MaxGrabDistance,
		},
		Metrics: reg,
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
