package core

import (
	"bytes"
	"fmt"
	"math"
)

// Remaining capacity per edge, indexed by edge id; owned by a single allocator run
type ResidualCapacity []float64

func NewResidualCapacity(n *Network) ResidualCapacity {
	r := make(ResidualCapacity, n.NumEdges())
	for i, e := range n.edges {
		r[i] = e.Capacity
	}
	return r
}

// True if every edge on the path has at least quantity left
func (r ResidualCapacity) Fits(path []EdgeID, quantity float64) bool {
	for _, id := range path {
		if r[id] < quantity {
			return false
		}
	}
	return true
}

// Consume quantity on every edge of the path
func (r ResidualCapacity) Commit(path []EdgeID, quantity float64) {
	for _, id := range path {
		r[id] -= quantity
	}
}

// Committed flow per edge, indexed by edge id
type FlowAssignment []float64

func NewFlowAssignment(n *Network) FlowAssignment {
	return make(FlowAssignment, n.NumEdges())
}

func (f FlowAssignment) Flow(id EdgeID) float64 {
	return f[id]
}

// Add quantity to every edge of the path
func (f FlowAssignment) Add(path []EdgeID, quantity float64) {
	for _, id := range path {
		f[id] += quantity
	}
}

// Sum of flows over all edges
func (f FlowAssignment) Total() float64 {
	total := 0.0
	for _, v := range f {
		total += v
	}
	return total
}

// Total cost of the flow on a network
func (f FlowAssignment) Cost(n *Network) float64 {
	cost := 0.0
	for i, v := range f {
		cost += v * n.edges[i].Cost
	}
	return cost
}

// Zero all flows with absolute value below epsilon
func (f FlowAssignment) Clean(epsilon float64) {
	for i, v := range f {
		if math.Abs(v) < epsilon {
			f[i] = 0
		}
	}
}

// Net flow into a node: inflow minus outflow
func (f FlowAssignment) NetInflow(n *Network, v NodeID) float64 {
	i, exists := n.index[v]
	if !exists {
		return 0
	}
	net := 0.0
	for _, id := range n.inEdges[i] {
		net += f[id]
	}
	for _, id := range n.outEdges[i] {
		net -= f[id]
	}
	return net
}

// Index of the first edge whose flow exceeds its capacity by more than tolerance, -1 if none
func (f FlowAssignment) CapacityViolation(n *Network, tolerance float64) EdgeID {
	for i, v := range f {
		if v > n.edges[i].Capacity+tolerance {
			return EdgeID(i)
		}
	}
	return -1
}

func (f FlowAssignment) Clone() FlowAssignment {
	return append(FlowAssignment(nil), f...)
}

func (f FlowAssignment) Format(n *Network) string {
	var b bytes.Buffer
	for i, v := range f {
		if v == 0 {
			continue
		}
		e := n.edges[i]
		fmt.Fprintf(&b, "%s->%s: %v/%v\n", e.From, e.To, v, e.Capacity)
	}
	return b.String()
}
