package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/travi-platform/travictl/internal/cache"
	"github.com/travi-platform/travictl/internal/domain"
)

// PlanList is the cached plan-list snapshot, carrying the server-side total
// alongside the page of plans.
type PlanList struct {
	Plans []domain.ChangePlan
	Total int
}

// Service is the change-plan lifecycle controller. It owns the read-through
// cache entries for plans and stats, dispatches the four lifecycle actions,
// and reconciles after success by invalidating the cache — never by patching
// server-authoritative state locally.
type Service struct {
	api    PlanAPI
	audit  AuditLog
	logger Logger
	now    func() time.Time

	plans *cache.Entry[PlanList]
	stats *cache.Entry[domain.ChangeStats]

	mu       sync.Mutex
	inflight map[string]domain.Action
}

// Option defines a functional option for service configuration.
type Option func(*Service)

// WithAuditLog attaches the local audit log for dispatched actions.
func WithAuditLog(audit AuditLog) Option {
	return func(s *Service) { s.audit = audit }
}

// WithLogger attaches the runtime logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the console service over the admin API.
func NewService(planAPI PlanAPI, opts ...Option) *Service {
	s := &Service{
		api:      planAPI,
		now:      time.Now,
		inflight: map[string]domain.Action{},
	}
	s.plans = cache.NewEntry(func(ctx context.Context) (PlanList, error) {
		plans, total, err := planAPI.ListPlans(ctx)
		if err != nil {
			return PlanList{}, err
		}
		return PlanList{Plans: plans, Total: total}, nil
	})
	s.stats = cache.NewEntry(planAPI.Stats)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Plans returns the plan list, fetching when the cache entry is invalid.
func (s *Service) Plans(ctx context.Context) (PlanList, error) {
	return s.plans.Get(ctx)
}

// Stats returns the change-management stats, fetching when invalid.
func (s *Service) Stats(ctx context.Context) (domain.ChangeStats, error) {
	return s.stats.Get(ctx)
}

// Refresh invalidates both cache entries and refetches them.
func (s *Service) Refresh(ctx context.Context) error {
	s.plans.Invalidate()
	s.stats.Invalidate()
	if _, err := s.plans.Get(ctx); err != nil {
		return err
	}
	_, err := s.stats.Get(ctx)
	return err
}

// LastFetched reports when the plan list was last fetched.
func (s *Service) LastFetched() (time.Time, bool) {
	return s.plans.FetchedAt()
}

// InFlight reports the action currently dispatched for a plan, if any. The
// console disables a plan row's whole action set while one is pending.
func (s *Service) InFlight(planID string) (domain.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.inflight[planID]
	return action, ok
}

// RecentAudit lists recent locally recorded actions, newest first.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.Recent(ctx, limit)
}

// Approve approves a submitted plan with optional reviewer notes.
func (s *Service) Approve(ctx context.Context, planID, notes string) (domain.ActionResult, error) {
	return s.dispatch(ctx, planID, domain.ActionApprove, notes, func(ctx context.Context) (domain.ActionResult, error) {
		return s.api.Approve(ctx, planID, notes)
	})
}

// Apply commits an approved plan's changes; execution continues server-side
// after the acknowledgment.
func (s *Service) Apply(ctx context.Context, planID string) (domain.ActionResult, error) {
	return s.dispatch(ctx, planID, domain.ActionApply, "", func(ctx context.Context) (domain.ActionResult, error) {
		return s.api.Apply(ctx, planID)
	})
}

// DryRun simulates a plan's execution without committing changes.
func (s *Service) DryRun(ctx context.Context, planID string) (domain.DryRunResult, error) {
	var result domain.DryRunResult
	_, err := s.dispatch(ctx, planID, domain.ActionDryRun, "", func(ctx context.Context) (domain.ActionResult, error) {
		var callErr error
		result, callErr = s.api.DryRun(ctx, planID)
		return domain.ActionResult{}, callErr
	})
	if err != nil {
		return domain.DryRunResult{}, err
	}
	return result, nil
}

// Rollback reverts a completed or failed plan with an optional reason.
func (s *Service) Rollback(ctx context.Context, planID, reason string) (domain.ActionResult, error) {
	return s.dispatch(ctx, planID, domain.ActionRollback, reason, func(ctx context.Context) (domain.ActionResult, error) {
		return s.api.Rollback(ctx, planID, reason)
	})
}

// dispatch runs one mutating action under the shared contract: top-level kill
// switch, per-plan in-flight guard, best-effort audit, and cache invalidation
// on success. Plan status is deliberately not re-validated here — gating
// happens at the presentation layer and the server has final say.
func (s *Service) dispatch(ctx context.Context, planID string, action domain.Action, notes string, call func(context.Context) (domain.ActionResult, error)) (domain.ActionResult, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return domain.ActionResult{}, ErrInvalidPlanID
	}

	if flags, ok := s.flags(ctx); ok && !flags.Enabled {
		return domain.ActionResult{}, ErrChangeManagementDisabled
	}

	if err := s.markInFlight(planID, action); err != nil {
		return domain.ActionResult{}, err
	}
	defer s.clearInFlight(planID)

	result, err := call(ctx)
	s.recordAudit(ctx, planID, action, notes, result, err)
	if err != nil {
		return domain.ActionResult{}, err
	}

	// Reconcile by invalidation only: the transition may still be running
	// server-side, so a locally patched status could lie.
	s.plans.Invalidate()
	s.stats.Invalidate()
	return result, nil
}

// flags returns the current feature flags, preferring the cached stats and
// falling back to a fetch. When stats are unreachable the kill switch cannot
// be evaluated and dispatch proceeds; the server still arbitrates.
func (s *Service) flags(ctx context.Context) (domain.FeatureFlags, bool) {
	if stats, ok := s.stats.Peek(); ok {
		return stats.Flags, true
	}
	stats, err := s.stats.Get(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("stats unavailable for kill-switch check", "error", err)
		}
		return domain.FeatureFlags{}, false
	}
	return stats.Flags, true
}

func (s *Service) markInFlight(planID string, action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[planID]; ok {
		return ErrActionInFlight
	}
	s.inflight[planID] = action
	return nil
}

func (s *Service) clearInFlight(planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, planID)
}

// recordAudit persists the dispatch outcome locally. Failures are logged and
// swallowed: the audit trail must never block lifecycle actions.
func (s *Service) recordAudit(ctx context.Context, planID string, action domain.Action, notes string, result domain.ActionResult, callErr error) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		ID:          uuid.NewString(),
		PlanID:      planID,
		Action:      action,
		Notes:       notes,
		Outcome:     AuditOutcomeOK,
		ExecutionID: result.ExecutionID,
		CreatedAt:   s.now().UTC(),
	}
	if callErr != nil {
		entry.Outcome = AuditOutcomeError
		entry.Message = callErr.Error()
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		if s.logger != nil {
			s.logger.Warn("audit record failed", "plan", planID, "action", action, "error", err)
		}
	}
}
