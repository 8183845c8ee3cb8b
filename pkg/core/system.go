package core

import (
	"bytes"
	"fmt"

	"github.com/relief-ops/supply-allocator/pkg/config"
)

// Inputs of an allocation: the network and the demands on it
type System struct {
	network *Network
	demands []Demand
}

func NewSystem(network *Network, demands []Demand) (*System, error) {
	if network == nil {
		return nil, fmt.Errorf("%w: nil network", ErrInvalidEdge)
	}
	if err := ValidateDemands(network, demands); err != nil {
		return nil, err
	}
	return &System{
		network: network,
		demands: append([]Demand(nil), demands...),
	}, nil
}

// Create a system from its spec, returning the optimizer spec
func NewSystemFromSpec(spec *config.SystemSpec) (*System, *config.OptimizerSpec, error) {
	network, err := NewNetworkFromSpec(&spec.Network)
	if err != nil {
		return nil, nil, err
	}
	system, err := NewSystem(network, DemandsFromSpec(spec.Demands))
	if err != nil {
		return nil, nil, err
	}
	optimizerSpec := spec.Optimizer
	return system, &optimizerSpec, nil
}

func (s *System) Network() *Network {
	return s.network
}

// Demands in input order
func (s *System) Demands() []Demand {
	return append([]Demand(nil), s.demands...)
}

func (s *System) TotalDemand() float64 {
	total := 0.0
	for _, d := range s.demands {
		total += d.Quantity
	}
	return total
}

func (s *System) String() string {
	var b bytes.Buffer
	b.WriteString(s.network.String())
	b.WriteString("Demands: ")
	for i, d := range s.demands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
	}
	b.WriteString("\n")
	return b.String()
}
