// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInvalidRequest     = "invalid_request"
	OutcomeForbidden          = "forbidden"
	OutcomeError              = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Auth flow metrics
	IncLogin(outcome string)
	IncRefresh(outcome string)
	IncRegistration(outcome string)
	IncPasswordChange(outcome string)
	IncBranchSwitch(outcome string)
	IncTokenIssued(tokenType string)
	ObservePasswordHash(duration time.Duration)

	// Branch name cache metrics
	IncBranchCacheHit()
	IncBranchCacheMiss()

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
