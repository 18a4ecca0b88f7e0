package domain

// Tab identifies one dashboard filter over the plan list.
type Tab string

const (
	TabAll       Tab = "all"
	TabPending   Tab = "pending"
	TabApproved  Tab = "approved"
	TabCompleted Tab = "completed"
)

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{TabAll, TabPending, TabApproved, TabCompleted}

// ParseTab validates and parses a tab name.
func ParseTab(s string) (Tab, bool) {
	for _, tab := range Tabs {
		if Tab(s) == tab {
			return tab, true
		}
	}
	return "", false
}

// Label returns the tab's display label.
func (t Tab) Label() string {
	switch t {
	case TabAll:
		return "All"
	case TabPending:
		return "Pending"
	case TabApproved:
		return "Approved"
	case TabCompleted:
		return "Completed"
	default:
		return string(t)
	}
}

// Matches reports whether a plan with the given status belongs on this tab.
// The named tabs partition the status space: every status matches at most one
// of pending/approved/completed, and draft, applying, and cancelled plans
// surface only under all.
func (t Tab) Matches(status PlanStatus) bool {
	switch t {
	case TabAll:
		return true
	case TabPending:
		return status == StatusSubmitted
	case TabApproved:
		return status == StatusApproved
	case TabCompleted:
		return status == StatusCompleted || status == StatusFailed || status == StatusRolledBack
	default:
		return false
	}
}

// FilterPlans returns the plans visible on the given tab, preserving order.
func FilterPlans(plans []ChangePlan, t Tab) []ChangePlan {
	out := make([]ChangePlan, 0, len(plans))
	for _, plan := range plans {
		if t.Matches(plan.Status) {
			out = append(out, plan)
		}
	}
	return out
}
