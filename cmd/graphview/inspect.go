package main

import (
	"os"

	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/output"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print a summary of a graph document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Data
			if len(args) == 1 {
				path = args[0]
			}

			records, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			output.PrintSummary(os.Stdout, output.Summarize(path, records))
			return nil
		},
	}
}
