package core

import (
	"errors"
	"fmt"
)

var (
	// malformed graph input: negative or non-finite capacity/cost, empty endpoint
	ErrInvalidEdge = errors.New("invalid edge")

	// malformed demand input: unknown or duplicate sink, sink at source, non-positive quantity
	ErrInvalidDemand = errors.New("invalid demand")

	// no path with enough residual capacity for a demand (heuristic only)
	ErrUnsatisfiableDemand = errors.New("unsatisfiable demand")

	// the capacity and conservation constraints admit no solution (exact only)
	ErrInfeasibleNetwork = errors.New("infeasible network")

	// requested sink has no allocation
	ErrUnknownSink = errors.New("unknown sink")
)

// A demand the heuristic allocator could not route
type UnsatisfiedDemand struct {
	Demand
	Reason string
}

func (u UnsatisfiedDemand) Error() string {
	return fmt.Sprintf("%s: sink=%s, quantity=%v: %s", ErrUnsatisfiableDemand, u.Sink, u.Quantity, u.Reason)
}

func (u UnsatisfiedDemand) Unwrap() error {
	return ErrUnsatisfiableDemand
}
