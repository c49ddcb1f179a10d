package model

// Fill colors chosen by Fill, in priority order.
const (
	FillIsolated = "orange"
	FillRoot     = "blue"
	FillDefault  = "black"
)

// Fill resolves the node's color: isolated > root > explicit color > default.
func (d NodeData) Fill() string {
	switch {
	case d.Isolated:
		return FillIsolated
	case d.Root:
		return FillRoot
	case d.Color != "":
		return d.Color
	default:
		return FillDefault
	}
}

// HasLabel reports whether the node is drawn as text instead of a square.
func (d NodeData) HasLabel() bool {
	return d.Label != ""
}

// Merge overlays the non-zero fields of other onto d.
func (d NodeData) Merge(other NodeData) NodeData {
	if other.Label != "" {
		d.Label = other.Label
	}
	if other.Color != "" {
		d.Color = other.Color
	}
	if other.Links != nil {
		d.Links = other.Links
	}
	d.Isolated = d.Isolated || other.Isolated
	d.Root = d.Root || other.Root
	return d
}
