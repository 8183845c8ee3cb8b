package solver

import (
	"bytes"
	"fmt"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Allocation strategy over a network
type Allocator interface {
	Strategy() string
	Allocate(network *core.Network, demands []core.Demand) (*Result, error)
}

// Solver of the allocation problem
type Solver struct {
	optimizerSpec *config.OptimizerSpec
	allocator     Allocator

	// outcome of the last solve
	result *Result
}

func NewSolver(optimizerSpec *config.OptimizerSpec) (*Solver, error) {
	allocator, err := NewAllocator(optimizerSpec)
	if err != nil {
		return nil, err
	}
	return &Solver{
		optimizerSpec: optimizerSpec,
		allocator:     allocator,
	}, nil
}

// Create the allocator named by the optimizer spec
func NewAllocator(optimizerSpec *config.OptimizerSpec) (Allocator, error) {
	switch name := optimizerSpec.StrategyName(); name {
	case config.HeuristicStrategy:
		return NewHeuristicAllocator(), nil
	case config.ExactStrategy:
		x := NewExactAllocator(NewSimplexSolver(optimizerSpec.SolverTolerance()))
		x.SetEpsilon(optimizerSpec.FlowEpsilon())
		return x, nil
	default:
		return nil, fmt.Errorf("unknown allocation strategy: %s", name)
	}
}

// Find an allocation for all demands of the system
func (s *Solver) Solve(system *core.System) error {
	s.result = nil
	result, err := s.allocator.Allocate(system.Network(), system.Demands())
	if err != nil {
		return err
	}
	s.result = result
	return nil
}

func (s *Solver) Strategy() string {
	return s.allocator.Strategy()
}

func (s *Solver) Result() *Result {
	return s.result
}

func (s *Solver) String() string {
	var b bytes.Buffer
	b.WriteString("Solver: \n")
	if s.result != nil {
		b.WriteString(s.result.String())
	}
	return b.String()
}
