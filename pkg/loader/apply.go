package loader

import (
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

// DroppedLink is a link whose target had no node when it was read
type DroppedLink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result summarizes what a load did to the simulation
type Result struct {
	Nodes   int           `json:"nodes"`
	Edges   int           `json:"edges"`
	Dropped []DroppedLink `json:"dropped,omitempty"`
	Pruned  int           `json:"pruned,omitempty"`
}

// Apply adds every record as a root node and links it to the nodes that
// already exist. A link to a record that comes later in the document, or
// to no record at all, is dropped.
func Apply(port sim.Port, records []model.Record) Result {
	var res Result

	for _, rec := range records {
		port.AddNode(rec.ID, model.NodeData{
			Root:  true,
			Label: rec.Headline,
			Links: rec.Links,
		})
		res.Nodes++

		for _, link := range rec.Links {
			target, ok := port.GetNode(link.ID)
			if !ok {
				res.Dropped = append(res.Dropped, DroppedLink{From: rec.ID, To: link.ID})
				logging.Debug("link dropped, unknown target", "from", rec.ID, "to", link.ID)
				continue
			}
			if port.AddEdge(rec.ID, target, model.EdgeData{Length: link.Length}) != nil {
				res.Edges++
			}
		}
	}

	return res
}

// Graph is a Port that can also remove what a document no longer holds
type Graph interface {
	sim.Port
	Nodes() []*model.Node
	Edges() []*model.Edge
	PruneNode(id string)
	PruneEdge(e *model.Edge)
}

// Sync makes the graph match a document: Apply, then prune the nodes and
// edges the document no longer mentions. Positions of surviving nodes are
// kept.
func Sync(g Graph, records []model.Record) Result {
	res := Apply(g, records)

	wantNodes := make(map[string]bool, len(records))
	for _, rec := range records {
		wantNodes[rec.ID] = true
	}
	for _, n := range g.Nodes() {
		if !wantNodes[n.ID] {
			g.PruneNode(n.ID)
			res.Pruned++
		}
	}

	type pair struct{ from, to string }
	wantEdges := make(map[pair]bool)
	for _, rec := range records {
		for _, link := range rec.Links {
			wantEdges[pair{rec.ID, link.ID}] = true
		}
	}
	for _, e := range g.Edges() {
		if !wantEdges[pair{e.Source.ID, e.Target.ID}] {
			g.PruneEdge(e)
		}
	}

	logging.Debug("graph synced", "nodes", res.Nodes, "edges", res.Edges,
		"dropped", len(res.Dropped), "pruned", res.Pruned)
	return res
}
