// Package apperrors defines the error kinds the core surfaces, per
// spec.md §7. Callers use errors.As to branch on kind; the streaming
// path (state -> features -> scoring) logs and swallows per-event
// errors rather than propagating them.
package apperrors

import "fmt"

// TransientUpstream marks a failure of the market or block-explorer
// collaborators. The collaborator clients return it when their circuit
// breaker rejects a call, and the research backfill wraps a failed
// upstream read in it. The clients make a single attempt per call and
// do not retry; a timeout, 5xx or rate-limit response is returned by
// the client as a plain error.
type TransientUpstream struct {
	Source string
	Err    error
}

func (e *TransientUpstream) Error() string {
	return fmt.Sprintf("transient upstream error from %s: %v", e.Source, e.Err)
}

func (e *TransientUpstream) Unwrap() error { return e.Err }

// InvalidInput marks malformed addresses, out-of-range prices,
// negative sizes, or unparseable dates. Rejected at the schema
// boundary; the HTTP layer surfaces it as 400.
type InvalidInput struct {
	Field  string
	Reason string
}

func (e *InvalidInput) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// InsufficientData marks fewer events/samples than a computation
// requires (e.g. <50 for the model report, <10 for AUC). Callers
// return a well-formed empty/null structure rather than an error in
// most call sites; this type exists for the cases that must still
// surface the reason (e.g. HTTP response bodies).
type InsufficientData struct {
	Required int
	Actual   int
	Context  string
}

func (e *InsufficientData) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d, have %d", e.Context, e.Required, e.Actual)
}

// StorageUnavailable marks a warehouse or cache that is not
// configured or unreachable. Research queries degrade to empty
// summaries; POSTs return 503.
type StorageUnavailable struct {
	Store string
	Err   error
}

func (e *StorageUnavailable) Error() string {
	return fmt.Sprintf("storage unavailable (%s): %v", e.Store, e.Err)
}

func (e *StorageUnavailable) Unwrap() error { return e.Err }

// JobFailure is caught inside the backfill/optimization workers;
// the job's status transitions to failed with this as ErrorMessage.
type JobFailure struct {
	JobID string
	Err   error
}

func (e *JobFailure) Error() string {
	return fmt.Sprintf("job %s failed: %v", e.JobID, e.Err)
}

func (e *JobFailure) Unwrap() error { return e.Err }

// Divergence is detected only implicitly through CUSUM/drift checks;
// it is surfaced as an alert, never returned as an error from a normal
// call path. Kept here so monitor code has a typed value to log when
// translating a drift condition into an alert.
type Divergence struct {
	StrategyID string
	Metric     string
	Sigma      float64
}

func (e *Divergence) Error() string {
	return fmt.Sprintf("strategy %s diverged on %s (%.2fσ)", e.StrategyID, e.Metric, e.Sigma)
}
