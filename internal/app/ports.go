package app

import (
	"context"
	"time"

	"github.com/travi-platform/travictl/internal/domain"
)

// PlanAPI is the admin REST API surface the console depends on. The server
// is the source of truth for every status transition; this client only
// triggers actions and refetches.
type PlanAPI interface {
	Stats(context.Context) (domain.ChangeStats, error)
	ListPlans(context.Context) ([]domain.ChangePlan, int, error)
	Approve(ctx context.Context, planID, notes string) (domain.ActionResult, error)
	Apply(ctx context.Context, planID string) (domain.ActionResult, error)
	DryRun(ctx context.Context, planID string) (domain.DryRunResult, error)
	Rollback(ctx context.Context, planID, reason string) (domain.ActionResult, error)
}

// AuditEntry records one locally dispatched action and its outcome.
type AuditEntry struct {
	ID          string
	PlanID      string
	Action      domain.Action
	Notes       string
	Outcome     string
	Message     string
	ExecutionID string
	CreatedAt   time.Time
}

// audit outcomes.
const (
	AuditOutcomeOK    = "ok"
	AuditOutcomeError = "error"
)

// AuditLog persists dispatched actions locally. Recording is best-effort: an
// audit failure never fails the action it records.
type AuditLog interface {
	Record(context.Context, AuditEntry) error
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Logger receives runtime events from the service. It matches the
// charmbracelet/log method shape so the cmd-layer runtime logger satisfies
// it directly.
type Logger interface {
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}
