package manager

import (
	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/internal/metrics"
	"github.com/relief-ops/supply-allocator/pkg/core"
	"github.com/relief-ops/supply-allocator/pkg/distribution"
	"github.com/relief-ops/supply-allocator/pkg/solver"
)

type Manager struct {
	system    *core.System
	optimizer *solver.Optimizer
	store     *distribution.Store
	emitter   *metrics.MetricsEmitter
}

func NewManager(system *core.System, optimizer *solver.Optimizer, store *distribution.Store) *Manager {
	return &Manager{
		system:    system,
		optimizer: optimizer,
		store:     store,
		emitter:   metrics.NewMetricsEmitter(),
	}
}

// Optimize runs the optimizer and publishes the allocation. Nothing is
// published when the optimizer fails.
func (m *Manager) Optimize() (*solver.Result, error) {
	strategy := m.optimizer.Strategy()
	result, err := m.optimizer.Optimize(m.system)
	if err != nil {
		m.emitter.EmitAllocationMetrics(strategy, "error", m.optimizer.GetSolutionTime(), 0)
		return nil, err
	}
	m.emitter.EmitAllocationMetrics(strategy, "success", m.optimizer.GetSolutionTime(), len(result.Unsatisfied))

	if report := result.Report(); report != nil {
		logger.Log.Warnw("some demands were not satisfied", "strategy", strategy, "report", report.Error())
	}
	logger.Log.Infow("allocation computed", "strategy", strategy, "cost", result.Cost,
		"sinks", result.Allocation.Len(), "unsatisfied", len(result.Unsatisfied),
		"msec", m.optimizer.GetSolutionTimeMsec())

	if m.store != nil {
		m.store.Publish(result.Allocation)
		m.emitter.EmitAllocatedQuantities(result.Solution().Spec)
	}
	return result, nil
}

func (m *Manager) System() *core.System {
	return m.system
}
