package core

import (
	"bytes"
	"fmt"
	"math"

	"github.com/relief-ops/supply-allocator/pkg/config"
)

// Node identifier
type NodeID string

// Index of an edge in its network, assigned in input order
type EdgeID int

// A directed edge with capacity and per unit cost
type Edge struct {
	ID       EdgeID
	From     NodeID
	To       NodeID
	Capacity float64
	Cost     float64
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s(cap=%v, cost=%v)", e.From, e.To, e.Capacity, e.Cost)
}

// Immutable directed capacitated network with a single source
type Network struct {
	source NodeID
	nodes  []NodeID
	index  map[NodeID]int
	edges  []Edge

	// edge ids by node index, in edge id order
	outEdges [][]EdgeID
	inEdges  [][]EdgeID
}

// Create a network; nodes referenced only by edges are added in order of appearance
func NewNetwork(source NodeID, nodes []NodeID, edges []Edge) (*Network, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source node", ErrInvalidEdge)
	}
	n := &Network{
		source: source,
		index:  make(map[NodeID]int),
		edges:  make([]Edge, len(edges)),
	}
	n.addNode(source)
	for _, v := range nodes {
		if v == "" {
			return nil, fmt.Errorf("%w: empty node name", ErrInvalidEdge)
		}
		n.addNode(v)
	}
	for i, e := range edges {
		if err := validateEdge(e); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		e.ID = EdgeID(i)
		n.edges[i] = e
		n.addNode(e.From)
		n.addNode(e.To)
	}
	n.outEdges = make([][]EdgeID, len(n.nodes))
	n.inEdges = make([][]EdgeID, len(n.nodes))
	for _, e := range n.edges {
		u, v := n.index[e.From], n.index[e.To]
		n.outEdges[u] = append(n.outEdges[u], e.ID)
		n.inEdges[v] = append(n.inEdges[v], e.ID)
	}
	return n, nil
}

// Create a network from its spec
func NewNetworkFromSpec(spec *config.NetworkData) (*Network, error) {
	nodes := make([]NodeID, len(spec.Nodes))
	for i, v := range spec.Nodes {
		nodes[i] = NodeID(v)
	}
	edges := make([]Edge, len(spec.Edges))
	for i, e := range spec.Edges {
		edges[i] = Edge{
			From:     NodeID(e.From),
			To:       NodeID(e.To),
			Capacity: e.Capacity,
			Cost:     e.Cost,
		}
	}
	return NewNetwork(NodeID(spec.Source), nodes, edges)
}

func validateEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return fmt.Errorf("%w: empty endpoint in %v", ErrInvalidEdge, e)
	}
	if math.IsNaN(e.Capacity) || math.IsInf(e.Capacity, 0) || e.Capacity < 0 {
		return fmt.Errorf("%w: capacity %v of %s->%s", ErrInvalidEdge, e.Capacity, e.From, e.To)
	}
	if math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) || e.Cost < 0 {
		return fmt.Errorf("%w: cost %v of %s->%s", ErrInvalidEdge, e.Cost, e.From, e.To)
	}
	return nil
}

func (n *Network) addNode(v NodeID) {
	if _, exists := n.index[v]; exists {
		return
	}
	n.index[v] = len(n.nodes)
	n.nodes = append(n.nodes, v)
}

func (n *Network) Source() NodeID {
	return n.source
}

func (n *Network) NumNodes() int {
	return len(n.nodes)
}

func (n *Network) NumEdges() int {
	return len(n.edges)
}

// Nodes in order of first appearance, source first
func (n *Network) Nodes() []NodeID {
	return append([]NodeID(nil), n.nodes...)
}

// Edges in id order
func (n *Network) Edges() []Edge {
	return append([]Edge(nil), n.edges...)
}

func (n *Network) Edge(id EdgeID) Edge {
	return n.edges[id]
}

func (n *Network) HasNode(v NodeID) bool {
	_, exists := n.index[v]
	return exists
}

// Position of a node in Nodes(), -1 if absent
func (n *Network) NodeIndex(v NodeID) int {
	if i, exists := n.index[v]; exists {
		return i
	}
	return -1
}

// Outgoing edges of a node in id order
func (n *Network) OutEdges(v NodeID) []EdgeID {
	i, exists := n.index[v]
	if !exists {
		return nil
	}
	return append([]EdgeID(nil), n.outEdges[i]...)
}

// Incoming edges of a node in id order
func (n *Network) InEdges(v NodeID) []EdgeID {
	i, exists := n.index[v]
	if !exists {
		return nil
	}
	return append([]EdgeID(nil), n.inEdges[i]...)
}

// Nodes reachable from the source over edges with positive capacity
func (n *Network) Reachable() map[NodeID]bool {
	seen := map[NodeID]bool{n.source: true}
	queue := []int{n.index[n.source]}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, id := range n.outEdges[u] {
			e := n.edges[id]
			if e.Capacity <= 0 || seen[e.To] {
				continue
			}
			seen[e.To] = true
			queue = append(queue, n.index[e.To])
		}
	}
	return seen
}

func (n *Network) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Network: source=%s; nodes=%d; edges=%d\n", n.source, len(n.nodes), len(n.edges))
	for _, e := range n.edges {
		fmt.Fprintf(&b, "  %v\n", e)
	}
	return b.String()
}
