package graph

import (
	"sort"

	"github.com/ritzau/graphview/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// LinkGraph is the directed graph of record links as written in a data
// document, including links to records that appear later (or never).
type LinkGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // record id -> graph id
	names  map[int64]string // graph id -> record id
	known  map[string]bool  // ids that have a record of their own
	nextID int64
}

// NewLinkGraph creates an empty link graph
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
		known: make(map[string]bool),
	}
}

// AddRecord adds a record id to the graph
func (lg *LinkGraph) AddRecord(id string) {
	lg.ensure(id)
	lg.known[id] = true
}

func (lg *LinkGraph) ensure(id string) int64 {
	if gid, exists := lg.ids[id]; exists {
		return gid
	}

	gid := lg.nextID
	lg.ids[id] = gid
	lg.names[gid] = id
	lg.graph.AddNode(simple.Node(gid))
	lg.nextID++
	return gid
}

// AddLink adds a link edge from source to target.
// Self links are ignored; gonum simple graphs do not allow them.
func (lg *LinkGraph) AddLink(source, target string) {
	if source == target {
		return
	}

	from := lg.ensure(source)
	to := lg.ensure(target)

	if !lg.graph.HasEdgeFromTo(from, to) {
		lg.graph.SetEdge(lg.graph.NewEdge(lg.graph.Node(from), lg.graph.Node(to)))
	}
}

// Graph returns the underlying directed graph
func (lg *LinkGraph) Graph() *simple.DirectedGraph {
	return lg.graph
}

// Name returns the record id for a graph id
func (lg *LinkGraph) Name(gid int64) (string, bool) {
	name, ok := lg.names[gid]
	return name, ok
}

// Records returns the ids that have a record, sorted
func (lg *LinkGraph) Records() []string {
	ids := make([]string, 0, len(lg.known))
	for id := range lg.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dangling returns link targets that never got a record of their own, sorted
func (lg *LinkGraph) Dangling() []string {
	var ids []string
	for id := range lg.ids {
		if !lg.known[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Links returns every link as a [source, target] pair
func (lg *LinkGraph) Links() [][2]string {
	var links [][2]string

	iter := lg.graph.Edges()
	for iter.Next() {
		e := iter.Edge()
		links = append(links, [2]string{lg.names[e.From().ID()], lg.names[e.To().ID()]})
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i][0] != links[j][0] {
			return links[i][0] < links[j][0]
		}
		return links[i][1] < links[j][1]
	})
	return links
}

// Targets returns the ids the given record links to
func (lg *LinkGraph) Targets(id string) []string {
	gid, exists := lg.ids[id]
	if !exists {
		return nil
	}

	var targets []string
	iter := lg.graph.From(gid)
	for iter.Next() {
		targets = append(targets, lg.names[iter.Node().ID()])
	}
	sort.Strings(targets)
	return targets
}

// BuildLinkGraph builds the link graph of a data document
func BuildLinkGraph(records []model.Record) *LinkGraph {
	lg := NewLinkGraph()

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		lg.AddRecord(rec.ID)
		for _, link := range rec.Links {
			lg.AddLink(rec.ID, link.ID)
		}
	}

	return lg
}
