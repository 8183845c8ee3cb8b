package solver

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Greedy allocator: routes each demand whole along its cheapest path with
// enough residual capacity, largest demand first.
//
// Demands of equal quantity keep their input order. Among paths of equal cost
// the first one discovered wins: the search pops labels by (distance, discovery
// sequence), scans out edges in edge id order, and only replaces a label on a
// strictly smaller distance. Ties are broken by discovery order rather than by
// node name, so renaming nodes never changes the chosen routes.
type HeuristicAllocator struct{}

func NewHeuristicAllocator() *HeuristicAllocator {
	return &HeuristicAllocator{}
}

func (h *HeuristicAllocator) Strategy() string {
	return config.HeuristicStrategy
}

func (h *HeuristicAllocator) Allocate(network *core.Network, demands []core.Demand) (*Result, error) {
	if err := core.ValidateDemands(network, demands); err != nil {
		return nil, err
	}

	ordered := append([]core.Demand(nil), demands...)
	slices.SortStableFunc(ordered, func(a, b core.Demand) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})

	residual := core.NewResidualCapacity(network)
	flows := core.NewFlowAssignment(network)
	quantities := make(map[core.NodeID]float64)
	paths := make(map[core.NodeID][]core.EdgeID)
	var unsatisfied []core.UnsatisfiedDemand

	for _, d := range ordered {
		path, cost, found := shortestFeasiblePath(network, residual, d.Sink, d.Quantity)
		if !found {
			u := core.UnsatisfiedDemand{
				Demand: d,
				Reason: "no path with enough residual capacity",
			}
			logger.Log.Warnw("demand not satisfied", "sink", d.Sink, "quantity", d.Quantity)
			unsatisfied = append(unsatisfied, u)
			continue
		}
		residual.Commit(path, d.Quantity)
		flows.Add(path, d.Quantity)
		quantities[d.Sink] = d.Quantity
		paths[d.Sink] = path
		logger.Log.Debugw("demand routed", "sink", d.Sink, "quantity", d.Quantity, "pathCost", cost, "hops", len(path))
	}

	return &Result{
		Strategy:    h.Strategy(),
		Flows:       flows,
		Residual:    residual,
		Paths:       paths,
		Allocation:  core.NewAllocation(quantities),
		Unsatisfied: unsatisfied,
		Cost:        flows.Cost(network),
	}, nil
}

// Label in the search queue
type label struct {
	node int
	dist float64
	seq  int
}

type labelQueue []label

func (q labelQueue) Len() int { return len(q) }

func (q labelQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q labelQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *labelQueue) Push(x any) { *q = append(*q, x.(label)) }

func (q *labelQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Cheapest path from the source to sink using only edges with residual
// capacity of at least quantity; returns the path edges in order and its cost
func shortestFeasiblePath(network *core.Network, residual core.ResidualCapacity,
	sink core.NodeID, quantity float64) ([]core.EdgeID, float64, bool) {

	nodes := network.Nodes()
	src := network.NodeIndex(network.Source())
	dst := network.NodeIndex(sink)
	if dst < 0 {
		return nil, 0, false
	}

	dist := make([]float64, len(nodes))
	prev := make([]core.EdgeID, len(nodes))
	visited := make([]bool, len(nodes))
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	seq := 0
	q := &labelQueue{{node: src, dist: 0, seq: seq}}
	for q.Len() > 0 {
		top := heap.Pop(q).(label)
		u := top.node
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == dst {
			break
		}
		for _, id := range network.OutEdges(nodes[u]) {
			if residual[id] < quantity {
				continue
			}
			e := network.Edge(id)
			v := network.NodeIndex(e.To)
			if visited[v] {
				continue
			}
			if nd := dist[u] + e.Cost; nd < dist[v] {
				dist[v] = nd
				prev[v] = id
				seq++
				heap.Push(q, label{node: v, dist: nd, seq: seq})
			}
		}
	}

	if !visited[dst] {
		return nil, 0, false
	}
	var path []core.EdgeID
	for v := dst; v != src; {
		id := prev[v]
		path = append(path, id)
		v = network.NodeIndex(network.Edge(id).From)
	}
	slices.Reverse(path)
	return path, dist[dst], true
}
