package domain

// ActionResult acknowledges a dispatched mutating action. ExecutionID is set
// for asynchronous executions (apply, rollback); nothing in this console
// subscribes to it — the operator refreshes to observe status transitions.
type ActionResult struct {
	ExecutionID string
}

// DryRunResult reports a simulated execution without any committed changes.
type DryRunResult struct {
	Success           bool
	ChangesWouldApply int
}
