package solver

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

func TestHeuristicReferenceNetwork(t *testing.T) {
	system := referenceSystem(t)
	result, err := NewHeuristicAllocator().Allocate(system.Network(), system.Demands())
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	if result.Strategy != config.HeuristicStrategy {
		t.Errorf("Strategy = %s", result.Strategy)
	}
	wantPaths := map[core.NodeID][]core.EdgeID{
		"H1": {edgeSA, edgeAB, edgeBH1},
		"H2": {edgeSC, edgeCD, edgeDH2},
	}
	for sink, want := range wantPaths {
		if got := result.Paths[sink]; !slices.Equal(got, want) {
			t.Errorf("path to %s = %v, want %v", sink, got, want)
		}
	}
	if result.Residual[edgeSA] != 7 {
		t.Errorf("residual S->A = %v, want 7", result.Residual[edgeSA])
	}
	if result.Residual[edgeSC] != 3 {
		t.Errorf("residual S->C = %v, want 3", result.Residual[edgeSC])
	}
	if result.Cost != 120 {
		t.Errorf("Cost = %v, want 120", result.Cost)
	}
	for _, d := range system.Demands() {
		if q, ok := result.Allocation.Quantity(d.Sink); !ok || q != d.Quantity {
			t.Errorf("allocation of %s = %v, %v; want %v", d.Sink, q, ok, d.Quantity)
		}
	}
	if len(result.Unsatisfied) != 0 || result.Report() != nil {
		t.Errorf("unexpected unsatisfied demands: %v", result.Report())
	}
	if result.CommodityFlows != nil {
		t.Error("heuristic result has commodity flows")
	}
}

func TestHeuristicResidualMatchesFlows(t *testing.T) {
	system := referenceSystem(t)
	network := system.Network()
	result, err := NewHeuristicAllocator().Allocate(network, system.Demands())
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	for _, e := range network.Edges() {
		if got := result.Residual[e.ID] + result.Flows[e.ID]; got != e.Capacity {
			t.Errorf("edge %v: residual + flow = %v", e, got)
		}
		if result.Residual[e.ID] < 0 {
			t.Errorf("edge %v: negative residual %v", e, result.Residual[e.ID])
		}
	}
}

func TestHeuristicLargestDemandFirst(t *testing.T) {
	// one cheap route through X with room for a single demand
	network := newNetwork(t, "S",
		core.Edge{From: "S", To: "X", Capacity: 8, Cost: 1},
		core.Edge{From: "X", To: "P", Capacity: 8, Cost: 0},
		core.Edge{From: "X", To: "Q", Capacity: 8, Cost: 0},
		core.Edge{From: "S", To: "P", Capacity: 8, Cost: 10},
		core.Edge{From: "S", To: "Q", Capacity: 8, Cost: 10},
	)

	result, err := NewHeuristicAllocator().Allocate(network, []core.Demand{
		{Sink: "P", Quantity: 3},
		{Sink: "Q", Quantity: 6},
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if got := result.Paths["Q"]; !slices.Equal(got, []core.EdgeID{0, 2}) {
		t.Errorf("path to Q = %v, want cheap route [0 2]", got)
	}
	if got := result.Paths["P"]; !slices.Equal(got, []core.EdgeID{3}) {
		t.Errorf("path to P = %v, want direct route [3]", got)
	}
}

func TestHeuristicEqualDemandsKeepInputOrder(t *testing.T) {
	network := newNetwork(t, "S",
		core.Edge{From: "S", To: "X", Capacity: 5, Cost: 1},
		core.Edge{From: "X", To: "P", Capacity: 5, Cost: 0},
		core.Edge{From: "X", To: "Q", Capacity: 5, Cost: 0},
		core.Edge{From: "S", To: "P", Capacity: 5, Cost: 10},
		core.Edge{From: "S", To: "Q", Capacity: 5, Cost: 10},
	)

	tests := []struct {
		name    string
		demands []core.Demand
		winner  core.NodeID
	}{
		{
			name:    "P first",
			demands: []core.Demand{{Sink: "P", Quantity: 5}, {Sink: "Q", Quantity: 5}},
			winner:  "P",
		},
		{
			name:    "Q first",
			demands: []core.Demand{{Sink: "Q", Quantity: 5}, {Sink: "P", Quantity: 5}},
			winner:  "Q",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewHeuristicAllocator().Allocate(network, tt.demands)
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			if got := result.Paths[tt.winner]; len(got) != 2 || got[0] != 0 {
				t.Errorf("path to %s = %v, want the route through X", tt.winner, got)
			}
			if result.Cost != 5*1+5*10 {
				t.Errorf("Cost = %v, want 55", result.Cost)
			}
		})
	}
}

func TestHeuristicEqualCostPathsFirstDiscoveredWins(t *testing.T) {
	network := newNetwork(t, "S",
		core.Edge{From: "S", To: "A", Capacity: 5, Cost: 1},
		core.Edge{From: "S", To: "B", Capacity: 5, Cost: 1},
		core.Edge{From: "A", To: "T", Capacity: 5, Cost: 1},
		core.Edge{From: "B", To: "T", Capacity: 5, Cost: 1},
	)
	for i := 0; i < 3; i++ {
		result, err := NewHeuristicAllocator().Allocate(network, []core.Demand{{Sink: "T", Quantity: 2}})
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if got := result.Paths["T"]; !slices.Equal(got, []core.EdgeID{0, 2}) {
			t.Errorf("run %d: path to T = %v, want [0 2]", i, got)
		}
	}
}

func TestHeuristicUnsatisfiableDemand(t *testing.T) {
	system := referenceSystem(t)
	demands := []core.Demand{
		{Sink: "H1", Quantity: 20},
		{Sink: "H2", Quantity: 7},
	}
	result, err := NewHeuristicAllocator().Allocate(system.Network(), demands)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(result.Unsatisfied) != 1 || result.Unsatisfied[0].Sink != "H1" {
		t.Fatalf("Unsatisfied = %v, want H1", result.Unsatisfied)
	}
	report := result.Report()
	if !errors.Is(report, core.ErrUnsatisfiableDemand) {
		t.Errorf("Report() = %v, want ErrUnsatisfiableDemand", report)
	}
	if _, ok := result.Allocation.Quantity("H1"); ok {
		t.Error("unsatisfied demand H1 has an allocation")
	}
	if q, ok := result.Allocation.Quantity("H2"); !ok || q != 7 {
		t.Errorf("allocation of H2 = %v, %v; want 7", q, ok)
	}
	// failed demands leave no trace in the residual
	if result.Residual[edgeSA] != 15 || result.Residual[edgeAB] != 10 {
		t.Errorf("residual changed by an unsatisfied demand: %v", result.Residual)
	}
	solution := result.Solution()
	if len(solution.Unsatisfied) != 1 || solution.Unsatisfied[0].Sink != "H1" {
		t.Errorf("Solution().Unsatisfied = %v", solution.Unsatisfied)
	}
}

func TestHeuristicDoesNotSplitDemands(t *testing.T) {
	// 8 units fit only when split over both routes
	network := newNetwork(t, "S",
		core.Edge{From: "S", To: "A", Capacity: 5, Cost: 1},
		core.Edge{From: "S", To: "B", Capacity: 5, Cost: 2},
		core.Edge{From: "A", To: "T", Capacity: 5, Cost: 1},
		core.Edge{From: "B", To: "T", Capacity: 5, Cost: 1},
	)
	result, err := NewHeuristicAllocator().Allocate(network, []core.Demand{{Sink: "T", Quantity: 8}})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(result.Unsatisfied) != 1 {
		t.Errorf("Unsatisfied = %v, want T", result.Unsatisfied)
	}
	if result.Flows.Total() != 0 || result.Cost != 0 {
		t.Errorf("flows committed for an unsatisfied demand: %v", result.Flows)
	}
}

func TestHeuristicInvalidDemands(t *testing.T) {
	system := referenceSystem(t)
	_, err := NewHeuristicAllocator().Allocate(system.Network(), []core.Demand{{Sink: "H9", Quantity: 1}})
	if !errors.Is(err, core.ErrInvalidDemand) {
		t.Errorf("Allocate() error = %v, want ErrInvalidDemand", err)
	}
}

func TestHeuristicNoDemands(t *testing.T) {
	system := referenceSystem(t)
	result, err := NewHeuristicAllocator().Allocate(system.Network(), nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if result.Allocation.Len() != 0 || result.Cost != 0 {
		t.Errorf("Allocate(nil) = %v", result)
	}
}

func TestHeuristicInputNotMutated(t *testing.T) {
	system := referenceSystem(t)
	demands := []core.Demand{{Sink: "H2", Quantity: 7}, {Sink: "H1", Quantity: 8}}
	if _, err := NewHeuristicAllocator().Allocate(system.Network(), demands); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if demands[0].Sink != "H2" {
		t.Error("Allocate() reordered the caller's demands")
	}
}

func TestHeuristicIdempotent(t *testing.T) {
	network := newNetwork(t, "S",
		core.Edge{From: "S", To: "X", Capacity: 5, Cost: 1},
		core.Edge{From: "X", To: "P", Capacity: 5, Cost: 0},
		core.Edge{From: "X", To: "Q", Capacity: 5, Cost: 0},
		core.Edge{From: "S", To: "P", Capacity: 5, Cost: 10},
		core.Edge{From: "S", To: "Q", Capacity: 5, Cost: 10},
		core.Edge{From: "S", To: "R", Capacity: 1, Cost: 1},
	)
	demands := []core.Demand{
		{Sink: "P", Quantity: 5},
		{Sink: "R", Quantity: 3},
		{Sink: "Q", Quantity: 5},
	}

	first, err := NewHeuristicAllocator().Allocate(network, demands)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(first.Unsatisfied) != 1 || first.Unsatisfied[0].Sink != "R" {
		t.Fatalf("Unsatisfied = %v, want R", first.Unsatisfied)
	}

	for i := 0; i < 3; i++ {
		again, err := NewHeuristicAllocator().Allocate(network, demands)
		if err != nil {
			t.Fatalf("run %d: Allocate() error = %v", i, err)
		}
		if !reflect.DeepEqual(first.Flows, again.Flows) {
			t.Errorf("run %d: Flows = %v, want %v", i, again.Flows, first.Flows)
		}
		if !reflect.DeepEqual(first.Residual, again.Residual) {
			t.Errorf("run %d: Residual = %v, want %v", i, again.Residual, first.Residual)
		}
		if !reflect.DeepEqual(first.Paths, again.Paths) {
			t.Errorf("run %d: Paths = %v, want %v", i, again.Paths, first.Paths)
		}
		if !slices.Equal(first.Allocation.Sinks(), again.Allocation.Sinks()) {
			t.Errorf("run %d: sinks = %v, want %v", i, again.Allocation.Sinks(), first.Allocation.Sinks())
		}
		for _, sink := range first.Allocation.Sinks() {
			want, _ := first.Allocation.Quantity(sink)
			if got, ok := again.Allocation.Quantity(sink); !ok || got != want {
				t.Errorf("run %d: quantity of %s = %v, want %v", i, sink, got, want)
			}
		}
		if !reflect.DeepEqual(first.Unsatisfied, again.Unsatisfied) {
			t.Errorf("run %d: Unsatisfied = %v, want %v", i, again.Unsatisfied, first.Unsatisfied)
		}
		if again.Cost != first.Cost {
			t.Errorf("run %d: Cost = %v, want %v", i, again.Cost, first.Cost)
		}
	}
}
