package solver

import (
	"bytes"
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Outcome of one allocator run
type Result struct {
	Strategy string

	// total committed flow per edge
	Flows core.FlowAssignment

	// per sink flow before aggregation (exact only)
	CommodityFlows map[core.NodeID]core.FlowAssignment

	// residual capacity after all commits and chosen paths (heuristic only)
	Residual core.ResidualCapacity
	Paths    map[core.NodeID][]core.EdgeID

	Allocation  *core.Allocation
	Unsatisfied []core.UnsatisfiedDemand
	Cost        float64
}

// Aggregate of all unsatisfied demands, nil if every demand was allocated
func (r *Result) Report() error {
	errs := make([]error, len(r.Unsatisfied))
	for i, u := range r.Unsatisfied {
		errs[i] = u
	}
	return utilerrors.NewAggregate(errs)
}

func (r *Result) Solution() *config.AllocationSolution {
	return r.Allocation.Solution(r.Strategy, r.Cost, r.Unsatisfied)
}

func (r *Result) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Result: strategy=%s; cost=%v\n", r.Strategy, r.Cost)
	fmt.Fprintf(&b, "%v\n", r.Allocation)
	for _, u := range r.Unsatisfied {
		fmt.Fprintf(&b, "unsatisfied: %v\n", u.Demand)
	}
	return b.String()
}
