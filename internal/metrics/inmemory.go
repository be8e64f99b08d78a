package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Logins               map[string]uint64
	Refreshes            map[string]uint64
	Registrations        map[string]uint64
	PasswordChanges      map[string]uint64
	BranchSwitches       map[string]uint64
	TokensIssued         map[string]uint64
	PasswordHashCount    uint64
	BranchCacheHits      uint64
	BranchCacheMisses    uint64
	HTTPRequests         uint64
	HTTPRequestsByStatus map[int]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                   sync.Mutex
	logins               map[string]uint64
	refreshes            map[string]uint64
	registrations        map[string]uint64
	passwordChanges      map[string]uint64
	branchSwitches       map[string]uint64
	tokensIssued         map[string]uint64
	httpRequestsByStatus map[int]uint64

	passwordHashCount uint64
	branchCacheHits   uint64
	branchCacheMisses uint64
	httpRequests      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		logins:               make(map[string]uint64),
		refreshes:            make(map[string]uint64),
		registrations:        make(map[string]uint64),
		passwordChanges:      make(map[string]uint64),
		branchSwitches:       make(map[string]uint64),
		tokensIssued:         make(map[string]uint64),
		httpRequestsByStatus: make(map[int]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Logins:               copyCounts(m.logins),
		Refreshes:            copyCounts(m.refreshes),
		Registrations:        copyCounts(m.registrations),
		PasswordChanges:      copyCounts(m.passwordChanges),
		BranchSwitches:       copyCounts(m.branchSwitches),
		TokensIssued:         copyCounts(m.tokensIssued),
		PasswordHashCount:    atomic.LoadUint64(&m.passwordHashCount),
		BranchCacheHits:      atomic.LoadUint64(&m.branchCacheHits),
		BranchCacheMisses:    atomic.LoadUint64(&m.branchCacheMisses),
		HTTPRequests:         atomic.LoadUint64(&m.httpRequests),
		HTTPRequestsByStatus: copyCounts(m.httpRequestsByStatus),
	}
}

// IncLogin increments the login counter for outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.inc(m.logins, outcome)
}

// IncRefresh increments the refresh counter for outcome.
func (m *InMemoryRecorder) IncRefresh(outcome string) {
	m.inc(m.refreshes, outcome)
}

// IncRegistration increments the registration counter for outcome.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	m.inc(m.registrations, outcome)
}

// IncPasswordChange increments the password change counter for outcome.
func (m *InMemoryRecorder) IncPasswordChange(outcome string) {
	m.inc(m.passwordChanges, outcome)
}

// IncBranchSwitch increments the branch switch counter for outcome.
func (m *InMemoryRecorder) IncBranchSwitch(outcome string) {
	m.inc(m.branchSwitches, outcome)
}

// IncTokenIssued increments the issued token counter for tokenType.
func (m *InMemoryRecorder) IncTokenIssued(tokenType string) {
	m.inc(m.tokensIssued, tokenType)
}

// ObservePasswordHash counts password hash computations.
func (m *InMemoryRecorder) ObservePasswordHash(duration time.Duration) {
	atomic.AddUint64(&m.passwordHashCount, 1)
}

// IncBranchCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncBranchCacheHit() {
	atomic.AddUint64(&m.branchCacheHits, 1)
}

// IncBranchCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncBranchCacheMiss() {
	atomic.AddUint64(&m.branchCacheMisses, 1)
}

// ObserveHTTPRequest counts a served request by status.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	m.mu.Lock()
	m.httpRequestsByStatus[status]++
	m.mu.Unlock()
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts[K comparable](src map[K]uint64) map[K]uint64 {
	dst := make(map[K]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
