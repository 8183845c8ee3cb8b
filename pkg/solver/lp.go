package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Linear program in standard form: minimize cᵀx subject to Ax = b, x ≥ 0
type LinearProgram struct {
	C []float64
	A *mat.Dense
	B []float64
}

func (p *LinearProgram) Dims() (rows, cols int) {
	return p.A.Dims()
}

// Optimal point of a linear program
type LPSolution struct {
	Objective float64
	X         []float64
}

// Solver of linear programs; returns core.ErrInfeasibleNetwork when no x satisfies the constraints
type LPSolver interface {
	Solve(p *LinearProgram) (*LPSolution, error)
}

// LP solver backed by the gonum simplex implementation
type SimplexSolver struct {
	Tolerance float64
}

func NewSimplexSolver(tolerance float64) *SimplexSolver {
	if tolerance <= 0 {
		tolerance = config.SolverTolerance
	}
	return &SimplexSolver{Tolerance: tolerance}
}

func (s *SimplexSolver) Solve(p *LinearProgram) (*LPSolution, error) {
	optF, optX, err := lp.Simplex(p.C, p.A, p.B, s.Tolerance, nil)
	switch {
	case err == nil:
		return &LPSolution{Objective: optF, X: optX}, nil
	case errors.Is(err, lp.ErrInfeasible):
		return nil, fmt.Errorf("%w: %v", core.ErrInfeasibleNetwork, err)
	default:
		return nil, fmt.Errorf("simplex: %w", err)
	}
}
