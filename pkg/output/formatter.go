// Package output prints what a graph document will look like once loaded.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ritzau/graphview/pkg/cycles"
	"github.com/ritzau/graphview/pkg/graph"
	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

// Summary describes a document as the viewer sees it
type Summary struct {
	Source   string
	Records  int
	Nodes    int
	Edges    int
	Dropped  []loader.DroppedLink
	Dangling []string // link targets without a record
	Cycles   []cycles.LinkCycle
}

// Summarize loads records into a scratch simulation and analyzes their links
func Summarize(source string, records []model.Record) Summary {
	ps := sim.NewParticleSystem(sim.DefaultParams())
	res := loader.Apply(ps, records)

	lg := graph.BuildLinkGraph(records)
	return Summary{
		Source:   source,
		Records:  len(records),
		Nodes:    len(ps.Nodes()),
		Edges:    len(ps.Edges()),
		Dropped:  res.Dropped,
		Dangling: lg.Dangling(),
		Cycles:   cycles.FindLinkCycles(lg),
	}
}

// PrintSummary prints a nicely formatted summary with colors
func PrintSummary(w io.Writer, s Summary) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "graphview - Document Summary")
	bold.Fprintln(w, "============================")
	fmt.Fprintf(w, "Source: %s\n", s.Source)
	fmt.Fprintf(w, "Records: %d\n", s.Records)
	fmt.Fprintf(w, "Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "Edges: %d\n", s.Edges)
	fmt.Fprintln(w)

	if len(s.Dropped) > 0 {
		yellow.Fprintf(w, "DROPPED LINKS (%d):\n", len(s.Dropped))
		for _, d := range s.Dropped {
			fmt.Fprintf(w, "  %s -> %s\n", d.From, d.To)
		}
		cyan.Fprintln(w, "  Links only connect to records listed earlier in the document.")
		fmt.Fprintln(w)
	}

	if len(s.Dangling) > 0 {
		red.Fprintf(w, "UNKNOWN TARGETS (%d):\n", len(s.Dangling))
		for _, id := range s.Dangling {
			fmt.Fprintf(w, "  %s\n", id)
		}
		fmt.Fprintln(w)
	}

	if len(s.Cycles) > 0 {
		cyan.Fprintf(w, "LINK CYCLES (%d):\n", len(s.Cycles))
		for _, c := range s.Cycles {
			fmt.Fprintf(w, "  %v\n", c.Records)
		}
		fmt.Fprintln(w)
	}

	links := s.Edges + len(s.Dropped)
	if len(s.Dropped) == 0 {
		green.Fprintf(w, "Summary: all %d links drawn\n", links)
		return
	}
	summaryColor := yellow
	if s.Edges == 0 {
		summaryColor = red
	}
	summaryColor.Fprintf(w, "Summary: %d of %d links drawn\n", s.Edges, links)
}
