package domain

// Action identifies one operator action against a plan.
type Action string

const (
	ActionViewDetails Action = "view-details"
	ActionDryRun      Action = "dry-run"
	ActionApprove     Action = "approve"
	ActionApply       Action = "apply"
	ActionRollback    Action = "rollback"
)

// mutatingActions lists every action that dispatches a server mutation, in
// display order.
var mutatingActions = []Action{ActionDryRun, ActionApprove, ActionApply, ActionRollback}

// Mutating reports whether the action posts to the server.
func (a Action) Mutating() bool {
	for _, action := range mutatingActions {
		if a == action {
			return true
		}
	}
	return false
}

// ActionAllowed evaluates the gating rule for one action against current
// status and flags. The predicate is pure: it is recomputed per render from
// the latest fetch and holds no memory across evaluations.
func ActionAllowed(a Action, status PlanStatus, flags FeatureFlags) bool {
	switch a {
	case ActionViewDetails:
		return true
	case ActionDryRun:
		if !flags.DryRunEnabled {
			return false
		}
		return status == StatusDraft || status == StatusSubmitted || status == StatusApproved
	case ActionApprove:
		return status == StatusSubmitted
	case ActionApply:
		return status == StatusApproved && flags.ApplyEnabled
	case ActionRollback:
		if !flags.RollbackEnabled {
			return false
		}
		return status == StatusCompleted || status == StatusFailed
	default:
		return false
	}
}

// AllowedActions returns the legal action set for a plan row, in display
// order, with view-details always first.
func AllowedActions(status PlanStatus, flags FeatureFlags) []Action {
	out := []Action{ActionViewDetails}
	for _, action := range mutatingActions {
		if ActionAllowed(action, status, flags) {
			out = append(out, action)
		}
	}
	return out
}
