package config

import "time"

/**
 * Parameters
 */

// allocation strategies
const (
	HeuristicStrategy = "heuristic"
	ExactStrategy     = "exact"
)

// default allocation strategy
const DefaultStrategy = ExactStrategy

// flows with absolute value below are reported as zero
var FlowEpsilon = 1e-9

// tolerance passed to the LP solver
var SolverTolerance = 1e-10

// allowed difference between delivered and requested quantity in an LP solution
var FeasibilityTolerance = 1e-6

/**
 * Distribution server
 */

// maximum size of a client request
const MaxRequestBytes = 1024

// per connection read/write timeout
var DefaultReadTimeout = 5 * time.Second

// bind address
const DefaultHost = "0.0.0.0"
const DefaultPort = "9000"

// default client dial timeout
var DefaultClientTimeout = 5 * time.Second

// message returned to clients asking for a sink without an allocation
const UnknownSinkMessage = "unknown sink"
