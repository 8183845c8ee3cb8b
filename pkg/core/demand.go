package core

import (
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/relief-ops/supply-allocator/pkg/config"
)

// Quantity requested at a sink; one commodity in the exact formulation
type Demand struct {
	Sink     NodeID
	Quantity float64
}

func (d Demand) String() string {
	return fmt.Sprintf("%s=%v", d.Sink, d.Quantity)
}

func DemandsFromSpec(specs []config.DemandSpec) []Demand {
	demands := make([]Demand, len(specs))
	for i, d := range specs {
		demands[i] = Demand{Sink: NodeID(d.Sink), Quantity: d.Quantity}
	}
	return demands
}

// Check that every demand names a distinct non-source node of the network
// and asks for a positive finite quantity
func ValidateDemands(n *Network, demands []Demand) error {
	seen := sets.New[NodeID]()
	for i, d := range demands {
		switch {
		case d.Sink == "":
			return fmt.Errorf("%w: demand %d has an empty sink", ErrInvalidDemand, i)
		case !n.HasNode(d.Sink):
			return fmt.Errorf("%w: sink %s is not in the network", ErrInvalidDemand, d.Sink)
		case d.Sink == n.Source():
			return fmt.Errorf("%w: sink %s is the source", ErrInvalidDemand, d.Sink)
		case seen.Has(d.Sink):
			return fmt.Errorf("%w: duplicate sink %s", ErrInvalidDemand, d.Sink)
		case math.IsNaN(d.Quantity) || math.IsInf(d.Quantity, 0) || d.Quantity <= 0:
			return fmt.Errorf("%w: quantity %v for sink %s", ErrInvalidDemand, d.Quantity, d.Sink)
		}
		seen.Insert(d.Sink)
	}
	return nil
}
