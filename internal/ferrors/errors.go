// Package ferrors defines the typed error kinds of the fitting
// orchestrator (spec §7), so the CLI can report a human-readable fatal
// message and set a non-zero exit code without string-matching errors.
package ferrors

import "fmt"

// ConfigError reports a malformed or invalid FitConfig: a missing
// required key, an unparsable variable spec, a missing file, or a
// configuration that would force a downstream divide-by-zero.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Msg)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// MultiConfigError aggregates every ConfigError found while validating a
// FitConfig, so the CLI reports the whole problem in one pass rather than
// failing on the first bad field.
type MultiConfigError struct {
	Errs []*ConfigError
}

func (e *MultiConfigError) Error() string {
	s := fmt.Sprintf("config: %d error(s):", len(e.Errs))
	for _, ce := range e.Errs {
		s += "\n  - " + ce.Error()
	}
	return s
}

func (e *MultiConfigError) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, ce := range e.Errs {
		out[i] = ce
	}
	return out
}

// SimulatorError records a permutation-level simulator failure: non-zero
// exit, missing output, or walltime exceeded. It is not fatal to the
// generation by itself (spec §7); it is recorded via a sentinel score.
type SimulatorError struct {
	PermID  int
	Replica int
	Reason  string
	Err     error
}

func (e *SimulatorError) Error() string {
	return fmt.Sprintf("simulator: perm %d replicate %d: %s: %v", e.PermID, e.Replica, e.Reason, e.Err)
}

func (e *SimulatorError) Unwrap() error { return e.Err }

// ScoringError records a scoring-time failure (alignment or a forbidden
// divide-by-zero) for one permutation. Not fatal; the permutation gets
// the sentinel score.
type ScoringError struct {
	PermID int
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring: perm %d: %s", e.PermID, e.Reason)
}

// InsufficientSurvivorsError is raised by the genetic operator when fewer
// than 3 survivors remain after culling (spec §4.6 step 5). Fatal to the
// current fit; the controller attempts to consolidate partial results.
type InsufficientSurvivorsError struct {
	Generation int
	Survivors  int
}

func (e *InsufficientSurvivorsError) Error() string {
	return fmt.Sprintf("genetic: generation %d: only %d survivor(s), need at least 3", e.Generation, e.Survivors)
}

// ResumeError is raised when no recoverable generation config is found
// anywhere in the output tree. Fatal.
type ResumeError struct {
	OutputDir string
	Reason    string
}

func (e *ResumeError) Error() string {
	return fmt.Sprintf("resume: %s: %s", e.OutputDir, e.Reason)
}

// ClusterQuotaError is raised before submitting further cluster work when
// queued+running jobs already exceed the configured job_limit (spec §7).
// Fatal.
type ClusterQuotaError struct {
	Queued   int
	Running  int
	JobLimit int
}

func (e *ClusterQuotaError) Error() string {
	return fmt.Sprintf("cluster quota exceeded: queued=%d running=%d limit=%d", e.Queued, e.Running, e.JobLimit)
}

// RetriesExhaustedError is raised when a generation has exhausted its
// retry budget and the controller cannot finalize partial results
// (requires at least generation 3 to have completed, per spec §4.3/§7).
type RetriesExhaustedError struct {
	Generation int
	MaxRetries int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("generation %d: retries exhausted (max %d) and fewer than 3 generations completed", e.Generation, e.MaxRetries)
}
