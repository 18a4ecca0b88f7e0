// Package api provides the HTTP+JSON client for the TRAVI admin REST API's
// change-management surface. The API contract is externally owned; payload
// field names follow it verbatim.
package api

import (
	"time"

	"github.com/travi-platform/travictl/internal/domain"
)

// planPayload mirrors one plan object on the wire.
type planPayload struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Scope            string                `json:"scope"`
	Status           string                `json:"status"`
	RiskLevel        string                `json:"riskLevel"`
	CreatedAt        time.Time             `json:"createdAt"`
	ApprovedAt       *time.Time            `json:"approvedAt,omitempty"`
	ApprovedByUserID string                `json:"approvedByUserId,omitempty"`
	ImpactSummary    *impactSummaryPayload `json:"impactSummary,omitempty"`
}

// impactSummaryPayload mirrors the server-computed impact estimate.
type impactSummaryPayload struct {
	ContentAffected  int      `json:"contentAffected"`
	EntitiesAffected int      `json:"entitiesAffected"`
	LinksAffected    int      `json:"linksAffected"`
	Warnings         []string `json:"warnings"`
}

// listPlansPayload mirrors the plan-list response envelope.
type listPlansPayload struct {
	Plans []planPayload `json:"plans"`
	Total int           `json:"total"`
}

// statsPayload mirrors the change-management stats response.
type statsPayload struct {
	Enabled         bool           `json:"enabled"`
	ApplyEnabled    bool           `json:"applyEnabled"`
	RollbackEnabled bool           `json:"rollbackEnabled"`
	DryRunEnabled   bool           `json:"dryRunEnabled"`
	TotalPlans      int            `json:"totalPlans"`
	ByStatus        map[string]int `json:"byStatus"`
	RecentActivity  int            `json:"recentActivity"`
}

// approveRequest is the approve action body.
type approveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// applyRequest is the apply action body.
type applyRequest struct {
	BatchSize int `json:"batchSize"`
}

// rollbackRequest is the rollback action body; rollbacks are always
// dispatched asynchronously.
type rollbackRequest struct {
	Reason string `json:"reason,omitempty"`
	Async  bool   `json:"async"`
}

// actionPayload mirrors the acknowledgment returned by mutating endpoints.
type actionPayload struct {
	ExecutionID string `json:"executionId,omitempty"`
}

// dryRunPayload mirrors the dry-run simulation result.
type dryRunPayload struct {
	Success           bool `json:"success"`
	ChangesWouldApply int  `json:"changesWouldApply"`
}

// toDomain converts a wire plan into the domain representation, preserving
// raw status/risk strings so unknown values still render via the taxonomy
// fallback.
func (p planPayload) toDomain() domain.ChangePlan {
	status, _ := domain.ParsePlanStatus(p.Status)
	risk, _ := domain.ParseRiskLevel(p.RiskLevel)
	plan := domain.ChangePlan{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Scope:            p.Scope,
		Status:           status,
		RiskLevel:        risk,
		CreatedAt:        p.CreatedAt,
		ApprovedAt:       p.ApprovedAt,
		ApprovedByUserID: p.ApprovedByUserID,
	}
	if p.ImpactSummary != nil {
		plan.ImpactSummary = &domain.ImpactSummary{
			ContentAffected:  p.ImpactSummary.ContentAffected,
			EntitiesAffected: p.ImpactSummary.EntitiesAffected,
			LinksAffected:    p.ImpactSummary.LinksAffected,
			Warnings:         append([]string(nil), p.ImpactSummary.Warnings...),
		}
	}
	return plan
}

// toDomain converts wire stats into the domain representation.
func (s statsPayload) toDomain() domain.ChangeStats {
	byStatus := make(map[domain.PlanStatus]int, len(s.ByStatus))
	for raw, count := range s.ByStatus {
		status, _ := domain.ParsePlanStatus(raw)
		byStatus[status] = count
	}
	return domain.ChangeStats{
		Flags: domain.FeatureFlags{
			Enabled:         s.Enabled,
			ApplyEnabled:    s.ApplyEnabled,
			RollbackEnabled: s.RollbackEnabled,
			DryRunEnabled:   s.DryRunEnabled,
		},
		TotalPlans:     s.TotalPlans,
		ByStatus:       byStatus,
		RecentActivity: s.RecentActivity,
	}
}
