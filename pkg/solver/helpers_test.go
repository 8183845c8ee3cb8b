package solver

import (
	"math"
	"testing"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

const testTolerance = 1e-6

// edge ids of the reference network
const (
	edgeSA core.EdgeID = iota
	edgeSC
	edgeAB
	edgeCD
	edgeBH1
	edgeDH2
	edgeAD
	edgeCB
)

func referenceSpec(strategy string) *config.SystemSpec {
	return &config.SystemSpec{
		Network: config.NetworkData{
			Source: "S",
			Nodes:  []string{"S", "A", "B", "C", "D", "H1", "H2"},
			Edges: []config.EdgeSpec{
				{From: "S", To: "A", Capacity: 15, Cost: 5},
				{From: "S", To: "C", Capacity: 10, Cost: 3},
				{From: "A", To: "B", Capacity: 10, Cost: 2},
				{From: "C", To: "D", Capacity: 10, Cost: 4},
				{From: "B", To: "H1", Capacity: 10, Cost: 1},
				{From: "D", To: "H2", Capacity: 10, Cost: 1},
				{From: "A", To: "D", Capacity: 5, Cost: 3},
				{From: "C", To: "B", Capacity: 5, Cost: 2},
			},
		},
		Demands: []config.DemandSpec{
			{Sink: "H1", Quantity: 8},
			{Sink: "H2", Quantity: 7},
		},
		Optimizer: config.OptimizerSpec{Strategy: strategy},
	}
}

func referenceSystem(t *testing.T) *core.System {
	t.Helper()
	system, _, err := core.NewSystemFromSpec(referenceSpec(config.ExactStrategy))
	if err != nil {
		t.Fatalf("NewSystemFromSpec() error = %v", err)
	}
	return system
}

func newNetwork(t *testing.T, source core.NodeID, edges ...core.Edge) *core.Network {
	t.Helper()
	n, err := core.NewNetwork(source, nil, edges)
	if err != nil {
		t.Fatalf("NewNetwork() error = %v", err)
	}
	return n
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= testTolerance
}

// every commodity leaves the source and reaches its sink, and relays pass it through
func checkConservation(t *testing.T, n *core.Network, sink core.NodeID, quantity float64, f core.FlowAssignment) {
	t.Helper()
	for _, v := range n.Nodes() {
		want := 0.0
		switch v {
		case n.Source():
			want = -quantity
		case sink:
			want = quantity
		}
		if got := f.NetInflow(n, v); !approxEqual(got, want) {
			t.Errorf("commodity %s: net inflow at %s = %v, want %v", sink, v, got, want)
		}
	}
}
