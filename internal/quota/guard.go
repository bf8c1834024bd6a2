// Package quota guards cluster-mode submission against the per-job
// queue/running ceiling declared by FitConfig.JobLimit (spec §7
// "cluster-quota error: queued+running over job_limit: fatal before
// submitting further work"). Adapted from the teacher's federation rate
// limiter, repurposed from per-caller request throttling to a single
// job's outstanding-task budget; admission is a plain threshold check
// (queued + running + new tasks against job_limit), with no token refill
// over time.
package quota

import (
	"sync"
	"time"

	"github.com/netfit/fitctl/internal/ferrors"
)

// Guard admits cluster chunk submissions while outstanding tasks (queued
// + running) stay within the configured limit.
type Guard struct {
	mu    sync.Mutex
	limit int // job_limit; 0 means unlimited
	now   func() time.Time
}

// NewGuard creates a quota guard for the given job_limit. A limit of 0
// disables quota enforcement.
func NewGuard(limit int) *Guard {
	return &Guard{limit: limit, now: time.Now}
}

// SetNow overrides the guard's clock, for tests.
func (g *Guard) SetNow(fn func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fn != nil {
		g.now = fn
	}
}

// Admit checks whether submitting an additional batch of size n is
// allowed given the currently queued and running task counts, returning
// a *ferrors.ClusterQuotaError if it would exceed job_limit.
func (g *Guard) Admit(queued, running, n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.limit <= 0 {
		return nil
	}
	if queued+running+n > g.limit {
		return &ferrors.ClusterQuotaError{Queued: queued, Running: running, JobLimit: g.limit}
	}
	return nil
}
