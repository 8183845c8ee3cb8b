package distribution

import (
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

/**
 * Environment variables
 */

// distribution server env names
const HostEnvName = "ALLOCATOR_HOST"
const PortEnvName = "ALLOCATOR_PORT"

/**
 * Parameters
 */

// request outcomes, used as metric labels
const (
	OutcomeServed       = "served"
	OutcomeUnknownSink  = "unknown_sink"
	OutcomeBadRequest   = "bad_request"
	OutcomeNotPublished = "not_published"
	OutcomeReadError    = "read_error"
	OutcomeWriteError   = "write_error"
)

// backoff used by clients when dialing the server
var DefaultClientBackoff = wait.Backoff{
	Duration: 100 * time.Millisecond,
	Factor:   2.0,
	Jitter:   0.1,
	Steps:    5,
}
