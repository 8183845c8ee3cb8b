package config

import (
	"fmt"
	"strings"
	"time"
)

// Strategy name in canonical form, falling back to the default strategy
func (s *OptimizerSpec) StrategyName() string {
	if s == nil || s.Strategy == "" {
		return DefaultStrategy
	}
	return strings.ToLower(strings.TrimSpace(s.Strategy))
}

// Flow epsilon, falling back to the default
func (s *OptimizerSpec) FlowEpsilon() float64 {
	if s == nil || s.Epsilon <= 0 {
		return FlowEpsilon
	}
	return s.Epsilon
}

// LP solver tolerance, falling back to the default
func (s *OptimizerSpec) SolverTolerance() float64 {
	if s == nil || s.Tolerance <= 0 {
		return SolverTolerance
	}
	return s.Tolerance
}

// Bind address of the distribution server
func (s *DistributionSpec) Address() string {
	host, port := s.Host, s.Port
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return host + ":" + port
}

// Per connection timeout, falling back to the default
func (s *DistributionSpec) Timeout() (time.Duration, error) {
	if s.ReadTimeout == "" {
		return DefaultReadTimeout, nil
	}
	d, err := time.ParseDuration(s.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid read timeout %q: %w", s.ReadTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("read timeout must be positive, got %s", s.ReadTimeout)
	}
	return d, nil
}
