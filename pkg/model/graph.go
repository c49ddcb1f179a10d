package model

// Point is a 2D coordinate. Whether it is in screen space or simulation space
// is decided by the API that hands it out.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Node is a vertex owned by the simulation.
// The drag controller holds a reference only while the node is grabbed.
type Node struct {
	ID       string   `json:"id"`
	Mass     float64  `json:"mass"`
	Pos      Point    `json:"p"`     // simulation space
	Fixed    bool     `json:"fixed"` // the simulation must not move a fixed node
	TempMass float64  `json:"tempMass,omitempty"`
	Data     NodeData `json:"data"`
}

// EffectiveMass is the mass the simulation should use for the node right now.
func (n *Node) EffectiveMass() float64 {
	if n.TempMass > n.Mass {
		return n.TempMass
	}
	return n.Mass
}

// NodeData carries what the loader and renderer know about a node.
// It replaces the free-form data bag with explicit optional fields.
type NodeData struct {
	Label    string `json:"label,omitempty"`
	Color    string `json:"color,omitempty"`
	Isolated bool   `json:"isolated,omitempty"`
	Root     bool   `json:"root,omitempty"`
	Links    []Link `json:"links,omitempty"`
}

// Edge is an ordered pair of nodes with a rest length.
type Edge struct {
	Source *Node    `json:"-"`
	Target *Node    `json:"-"`
	Length float64  `json:"length"`
	Data   EdgeData `json:"data"`
}

// EdgeData is the payload attached to an edge by the loader.
type EdgeData struct {
	Length float64 `json:"length,omitempty"`
}
