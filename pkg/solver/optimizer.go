package solver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

type Optimizer struct {
	spec             *config.OptimizerSpec
	solver           *Solver
	solutionTimeMsec int64
	solutionTime     time.Duration
}

// Create optimizer from spec
func NewOptimizerFromSpec(spec *config.OptimizerSpec) *Optimizer {
	if spec == nil {
		spec = &config.OptimizerSpec{}
	}
	return &Optimizer{
		spec: spec,
	}
}

// Create optimizer from JSON encoded spec
func NewOptimizerFromData(byteValue []byte) (*Optimizer, error) {
	var spec config.OptimizerSpec
	if err := json.Unmarshal(byteValue, &spec); err != nil {
		return nil, err
	}
	return NewOptimizerFromSpec(&spec), nil
}

// Run the configured allocator on the system
func (o *Optimizer) Optimize(system *core.System) (*Result, error) {
	solver, err := NewSolver(o.spec)
	if err != nil {
		return nil, err
	}
	o.solver = solver

	startTime := time.Now()
	err = o.solver.Solve(system)
	o.solutionTime = time.Since(startTime)
	o.solutionTimeMsec = o.solutionTime.Milliseconds()
	if err != nil {
		return nil, err
	}
	return o.solver.Result(), nil
}

func (o *Optimizer) Strategy() string {
	return o.spec.StrategyName()
}

func (o *Optimizer) GetSolutionTimeMsec() int64 {
	return o.solutionTimeMsec
}

func (o *Optimizer) GetSolutionTime() time.Duration {
	return o.solutionTime
}

func (o *Optimizer) String() string {
	var b bytes.Buffer
	if o.solver != nil {
		b.WriteString(o.solver.String())
	}
	fmt.Fprintf(&b, "Solution time: %d msec\n", o.solutionTimeMsec)
	return b.String()
}
