package sim

import (
	"math"

	"github.com/ritzau/graphview/pkg/model"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// screenNode is a node placed in screen space for the kd-tree.
type screenNode struct {
	pt   model.Point
	node *model.Node
}

func (p screenNode) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(screenNode)
	if d == 0 {
		return p.pt.X - q.pt.X
	}
	return p.pt.Y - q.pt.Y
}

func (p screenNode) Dims() int { return 2 }

// Distance is the squared euclidean distance.
func (p screenNode) Distance(c kdtree.Comparable) float64 {
	q := c.(screenNode)
	dx, dy := p.pt.X-q.pt.X, p.pt.Y-q.pt.Y
	return dx*dx + dy*dy
}

type screenNodes []screenNode

func (p screenNodes) Index(i int) kdtree.Comparable { return p[i] }
func (p screenNodes) Len() int                       { return len(p) }
func (p screenNodes) Pivot(d kdtree.Dim) int         { return plane{Dim: d, screenNodes: p}.Pivot() }
func (p screenNodes) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// plane sorts screenNodes along one dimension while the tree is built.
type plane struct {
	kdtree.Dim
	screenNodes
}

func (p plane) Less(i, j int) bool {
	return p.screenNodes[i].Compare(p.screenNodes[j], p.Dim) < 0
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.screenNodes = p.screenNodes[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.screenNodes[i], p.screenNodes[j] = p.screenNodes[j], p.screenNodes[i]
}

// nearestOnScreen builds a tree over the current screen positions and
// queries it. The tree is rebuilt per query: positions change every step
// and the drag controller writes them directly.
func nearestOnScreen(points screenNodes, q model.Point) (Nearest, bool) {
	if len(points) == 0 {
		return Nearest{}, false
	}

	tree := kdtree.New(points, false)
	got, d2 := tree.Nearest(screenNode{pt: q})
	if got == nil {
		return Nearest{}, false
	}

	hit := got.(screenNode)
	return Nearest{Node: hit.node, Point: hit.pt, Distance: math.Sqrt(d2)}, true
}
