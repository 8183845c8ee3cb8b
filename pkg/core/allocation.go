package core

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/relief-ops/supply-allocator/pkg/config"
)

// Quantity delivered per sink; read-only once created
type Allocation struct {
	quantities map[NodeID]float64
}

// Create an allocation from a copy of the given quantities
func NewAllocation(quantities map[NodeID]float64) *Allocation {
	return &Allocation{
		quantities: maps.Clone(quantities),
	}
}

// Create an allocation from a solution spec
func AllocationFromSolution(s *config.AllocationSolution) *Allocation {
	q := make(map[NodeID]float64, len(s.Spec))
	for k, v := range s.Spec {
		q[NodeID(k)] = v
	}
	return &Allocation{quantities: q}
}

// Quantity allocated to a sink; false if the sink has none
func (a *Allocation) Quantity(sink NodeID) (float64, bool) {
	if a == nil {
		return 0, false
	}
	q, exists := a.quantities[sink]
	return q, exists
}

// Sinks with an allocation, sorted by name
func (a *Allocation) Sinks() []NodeID {
	if a == nil {
		return nil
	}
	var sinks []NodeID
	for sink := range a.quantities {
		sinks = append(sinks, sink)
	}
	slices.Sort(sinks)
	return sinks
}

func (a *Allocation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.quantities)
}

func (a *Allocation) Total() float64 {
	total := 0.0
	for _, sink := range a.Sinks() {
		total += a.quantities[sink]
	}
	return total
}

// Generate the solution spec for the allocation
func (a *Allocation) Solution(strategy string, cost float64, unsatisfied []UnsatisfiedDemand) *config.AllocationSolution {
	s := &config.AllocationSolution{
		Strategy: strategy,
		Spec:     make(map[string]float64, a.Len()),
		Cost:     cost,
	}
	for _, sink := range a.Sinks() {
		s.Spec[string(sink)] = a.quantities[sink]
	}
	for _, u := range unsatisfied {
		s.Unsatisfied = append(s.Unsatisfied, config.DemandSpec{Sink: string(u.Sink), Quantity: u.Quantity})
	}
	return s
}

func (a *Allocation) String() string {
	var b bytes.Buffer
	b.WriteString("Allocation: ")
	for i, sink := range a.Sinks() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", sink, a.quantities[sink])
	}
	return b.String()
}
