package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncRefresh is a no-op.
func (n *NoopRecorder) IncRefresh(outcome string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(outcome string) {}

// IncPasswordChange is a no-op.
func (n *NoopRecorder) IncPasswordChange(outcome string) {}

// IncBranchSwitch is a no-op.
func (n *NoopRecorder) IncBranchSwitch(outcome string) {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued(tokenType string) {}

// ObservePasswordHash is a no-op.
func (n *NoopRecorder) ObservePasswordHash(duration time.Duration) {}

// IncBranchCacheHit is a no-op.
func (n *NoopRecorder) IncBranchCacheHit() {}

// IncBranchCacheMiss is a no-op.
func (n *NoopRecorder) IncBranchCacheMiss() {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
