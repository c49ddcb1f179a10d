package cycles

import (
	"slices"
	"strings"

	"github.com/ritzau/graphview/pkg/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// LinkCycle is a group of records that reach each other through links
type LinkCycle struct {
	Records []string
}

// FindLinkCycles finds all strongly connected groups of two or more records
// in the link graph. A record linking only to itself is not a cycle.
// Records within a cycle, and the cycles themselves, are sorted by id.
func FindLinkCycles(lg *graph.LinkGraph) []LinkCycle {
	cycles := make([]LinkCycle, 0)
	for _, scc := range topo.TarjanSCC(lg.Graph()) {
		if len(scc) < 2 {
			continue
		}
		records := make([]string, 0, len(scc))
		for _, n := range scc {
			if name, ok := lg.Name(n.ID()); ok {
				records = append(records, name)
			}
		}
		slices.Sort(records)
		cycles = append(cycles, LinkCycle{Records: records})
	}

	slices.SortFunc(cycles, func(a, b LinkCycle) int {
		return strings.Compare(a.Records[0], b.Records[0])
	})
	return cycles
}
