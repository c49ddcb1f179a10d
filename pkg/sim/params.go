package sim

// Params tunes the layout engine.
type Params struct {
	Repulsion     float64 // global repulsion between nodes
	Rate          float64 // gradient descent rate
	Theta         float64 // Barnes-Hut approximation constant
	Updates       int     // update budget after each graph change
	TempMassDecay float64 // per-step factor pulling TempMass back to Mass
	Seed          uint64  // placement of new nodes
}

// DefaultParams returns the parameters the viewer starts with.
func DefaultParams() Params {
	return Params{
		Repulsion:     1,
		Rate:          0.05,
		Theta:         0.2,
		Updates:       300,
		TempMassDecay: 0.9,
		Seed:          1,
	}
}
