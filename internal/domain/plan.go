package domain

import "time"

type PlanStatus string

const (
	StatusDraft      PlanStatus = "draft"
	StatusSubmitted  PlanStatus = "submitted"
	StatusApproved   PlanStatus = "approved"
	StatusApplying   PlanStatus = "applying"
	StatusCompleted  PlanStatus = "completed"
	StatusFailed     PlanStatus = "failed"
	StatusRolledBack PlanStatus = "rolled_back"
	StatusCancelled  PlanStatus = "cancelled"
)

// knownStatuses holds every status the server contract defines, in lifecycle order.
var knownStatuses = []PlanStatus{
	StatusDraft,
	StatusSubmitted,
	StatusApproved,
	StatusApplying,
	StatusCompleted,
	StatusFailed,
	StatusRolledBack,
	StatusCancelled,
}

// ParsePlanStatus validates and parses a status string.
func ParsePlanStatus(s string) (PlanStatus, bool) {
	for _, status := range knownStatuses {
		if PlanStatus(s) == status {
			return status, true
		}
	}
	return PlanStatus(s), false
}

// KnownStatuses returns the full status set in lifecycle order.
func KnownStatuses() []PlanStatus {
	return append([]PlanStatus(nil), knownStatuses...)
}

// Terminal reports whether the status ends a plan's lifecycle.
func (s PlanStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRolledBack, StatusCancelled:
		return true
	default:
		return false
	}
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var knownRiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// ParseRiskLevel validates and parses a risk level string.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for _, level := range knownRiskLevels {
		if RiskLevel(s) == level {
			return level, true
		}
	}
	return RiskLevel(s), false
}

// KnownRiskLevels returns the full risk set in ascending severity order.
func KnownRiskLevels() []RiskLevel {
	return append([]RiskLevel(nil), knownRiskLevels...)
}

// ImpactSummary is the server-computed estimate of what applying a plan touches.
// Absent for plans that have not been analyzed yet.
type ImpactSummary struct {
	ContentAffected  int
	EntitiesAffected int
	LinksAffected    int
	Warnings         []string
}

// ChangePlan is a server-tracked proposal for a bulk content mutation.
// Status is server-authoritative: this client only triggers actions that
// cause the server to transition it, never mutates it locally.
type ChangePlan struct {
	ID               string
	Name             string
	Description      string
	Scope            string
	Status           PlanStatus
	RiskLevel        RiskLevel
	CreatedAt        time.Time
	ApprovedAt       *time.Time
	ApprovedByUserID string
	ImpactSummary    *ImpactSummary
}
