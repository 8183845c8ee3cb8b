package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Multi-commodity minimum cost flow allocator.
//
// Each demand is a commodity with one flow variable per edge. Edge capacity is
// shared by all commodities through one slack variable per edge:
//
//	Σ_k f[k,e] + s[e] = cap[e]
//
// and each commodity k conserves flow at every node: the source emits d[k],
// sink k absorbs d[k], all other nodes (including other sinks) pass it through.
// One conservation row per commodity and weakly connected component is
// redundant and is left out so the equality system has full row rank.
type ExactAllocator struct {
	solver    LPSolver
	epsilon   float64
	tolerance float64
}

func NewExactAllocator(solver LPSolver) *ExactAllocator {
	if solver == nil {
		solver = NewSimplexSolver(config.SolverTolerance)
	}
	return &ExactAllocator{
		solver:    solver,
		epsilon:   config.FlowEpsilon,
		tolerance: config.FeasibilityTolerance,
	}
}

// Set the threshold below which flows are reported as zero
func (x *ExactAllocator) SetEpsilon(epsilon float64) {
	if epsilon > 0 {
		x.epsilon = epsilon
	}
}

func (x *ExactAllocator) Strategy() string {
	return config.ExactStrategy
}

func (x *ExactAllocator) Allocate(network *core.Network, demands []core.Demand) (*Result, error) {
	if err := core.ValidateDemands(network, demands); err != nil {
		return nil, err
	}
	numEdges := network.NumEdges()
	result := &Result{
		Strategy:       x.Strategy(),
		Flows:          core.NewFlowAssignment(network),
		CommodityFlows: make(map[core.NodeID]core.FlowAssignment, len(demands)),
	}
	if len(demands) == 0 {
		result.Allocation = core.NewAllocation(nil)
		return result, nil
	}

	reachable := network.Reachable()
	for _, d := range demands {
		if !reachable[d.Sink] {
			return nil, fmt.Errorf("%w: sink %s is not reachable from %s", core.ErrInfeasibleNetwork, d.Sink, network.Source())
		}
	}

	p := buildFlowProgram(network, demands)
	rows, cols := p.Dims()
	logger.Log.Debugw("solving flow program", "commodities", len(demands), "rows", rows, "cols", cols)

	sol, err := x.solver.Solve(p)
	if err != nil {
		return nil, err
	}

	quantities := make(map[core.NodeID]float64, len(demands))
	for k, d := range demands {
		f := core.FlowAssignment(append([]float64(nil), sol.X[k*numEdges:(k+1)*numEdges]...))
		f.Clean(x.epsilon)
		delivered := f.NetInflow(network, d.Sink)
		if math.Abs(delivered-d.Quantity) > x.tolerance*math.Max(1, d.Quantity) {
			return nil, fmt.Errorf("solver delivered %v to sink %s, requested %v", delivered, d.Sink, d.Quantity)
		}
		for i, v := range f {
			result.Flows[i] += v
		}
		result.CommodityFlows[d.Sink] = f
		quantities[d.Sink] = d.Quantity
	}
	result.Flows.Clean(x.epsilon)
	if id := result.Flows.CapacityViolation(network, x.tolerance); id >= 0 {
		return nil, fmt.Errorf("solver exceeded capacity of %v", network.Edge(id))
	}
	result.Allocation = core.NewAllocation(quantities)
	result.Cost = result.Flows.Cost(network)
	return result, nil
}

// Build the standard form program. Columns are f[k,e] at k*E+e followed by
// the edge slacks at K*E+e; rows are the E capacity rows followed by the kept
// conservation rows of each commodity.
func buildFlowProgram(network *core.Network, demands []core.Demand) *LinearProgram {
	edges := network.Edges()
	numEdges, numNodes, numCommodities := len(edges), network.NumNodes(), len(demands)
	source := network.NodeIndex(network.Source())

	dropped := redundantRows(network)
	kept := make([]int, 0, numNodes)
	for v := 0; v < numNodes; v++ {
		if !dropped[v] {
			kept = append(kept, v)
		}
	}
	rowOf := make([]int, numNodes)
	for i := range rowOf {
		rowOf[i] = -1
	}
	for i, v := range kept {
		rowOf[v] = i
	}

	rows := numEdges + numCommodities*len(kept)
	cols := (numCommodities + 1) * numEdges
	A := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for e, edge := range edges {
		for k := 0; k < numCommodities; k++ {
			A.Set(e, k*numEdges+e, 1)
			c[k*numEdges+e] = edge.Cost
		}
		A.Set(e, numCommodities*numEdges+e, 1)
		b[e] = edge.Capacity
	}

	for k, d := range demands {
		base := numEdges + k*len(kept)
		sink := network.NodeIndex(d.Sink)
		for e, edge := range edges {
			if edge.From == edge.To {
				continue
			}
			from, to := network.NodeIndex(edge.From), network.NodeIndex(edge.To)
			col := k*numEdges + e
			// rows read inflow - outflow, except the source which reads outflow - inflow
			if r := rowOf[from]; r >= 0 {
				A.Set(base+r, col, sign(from, source))
			}
			if r := rowOf[to]; r >= 0 {
				A.Set(base+r, col, -sign(to, source))
			}
		}
		if r := rowOf[source]; r >= 0 {
			b[base+r] = d.Quantity
		}
		if r := rowOf[sink]; r >= 0 {
			b[base+r] = d.Quantity
		}
	}

	return &LinearProgram{C: c, A: A, B: b}
}

// coefficient of an outgoing edge in the row of node v
func sign(v, source int) float64 {
	if v == source {
		return 1
	}
	return -1
}

// Mark the lowest indexed node of each weakly connected component; its
// conservation row is implied by the others.
func redundantRows(network *core.Network) []bool {
	parent := make([]int, network.NumNodes())
	for i := range parent {
		parent[i] = i
	}
	find := func(v int) int {
		for parent[v] != v {
			parent[v] = parent[parent[v]]
			v = parent[v]
		}
		return v
	}
	for _, e := range network.Edges() {
		ru, rv := find(network.NodeIndex(e.From)), find(network.NodeIndex(e.To))
		if ru == rv {
			continue
		}
		// keep the smaller index as root
		if ru < rv {
			parent[rv] = ru
		} else {
			parent[ru] = rv
		}
	}
	dropped := make([]bool, len(parent))
	for v := range parent {
		if find(v) == v {
			dropped[v] = true
		}
	}
	return dropped
}
