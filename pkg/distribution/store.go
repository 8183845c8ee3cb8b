package distribution

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/relief-ops/supply-allocator/pkg/core"
)

var ErrNotPublished = errors.New("allocation not published")

// Holds the published allocation. Publishing swaps the whole snapshot, so a
// lookup sees either the old or the new allocation, never a mix.
type Store struct {
	current atomic.Pointer[core.Allocation]
}

func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current allocation
func (s *Store) Publish(a *core.Allocation) {
	s.current.Store(a)
}

// Snapshot returns the current allocation, nil before the first publish
func (s *Store) Snapshot() *core.Allocation {
	return s.current.Load()
}

// Lookup returns the quantity allocated to the named sink
func (s *Store) Lookup(name string) (float64, error) {
	a := s.current.Load()
	if a == nil {
		return 0, ErrNotPublished
	}
	q, exists := a.Quantity(core.NodeID(name))
	if !exists {
		return 0, fmt.Errorf("%w: %s", core.ErrUnknownSink, name)
	}
	return q, nil
}
