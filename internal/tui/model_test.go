package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/travi-platform/travictl/internal/app"
	"github.com/travi-platform/travictl/internal/domain"
)

type fakeService struct {
	plans     []domain.ChangePlan
	total     int
	stats     domain.ChangeStats
	fetchedAt time.Time
	inflight  map[string]domain.Action
	audit     []app.AuditEntry

	refreshCalls   int
	lastAction     domain.Action
	lastPlanID     string
	lastNote       string
	actionErr      error
	dryRunResult   domain.DryRunResult
	actionResult   domain.ActionResult
	plansErr       error
	auditErr       error
	dispatchCounts map[domain.Action]int
}

func newFakeService(plans []domain.ChangePlan, flags domain.FeatureFlags) *fakeService {
	byStatus := map[domain.PlanStatus]int{}
	for _, plan := range plans {
		byStatus[plan.Status]++
	}
	return &fakeService{
		plans:          plans,
		total:          len(plans),
		stats:          domain.ChangeStats{Flags: flags, TotalPlans: len(plans), ByStatus: byStatus},
		fetchedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		inflight:       map[string]domain.Action{},
		actionResult:   domain.ActionResult{ExecutionID: "exec-1"},
		dryRunResult:   domain.DryRunResult{Success: true, ChangesWouldApply: 7},
		dispatchCounts: map[domain.Action]int{},
	}
}

func (f *fakeService) Plans(context.Context) (app.PlanList, error) {
	if f.plansErr != nil {
		return app.PlanList{}, f.plansErr
	}
	out := make([]domain.ChangePlan, len(f.plans))
	copy(out, f.plans)
	return app.PlanList{Plans: out, Total: f.total}, nil
}

func (f *fakeService) Stats(context.Context) (domain.ChangeStats, error) {
	if f.plansErr != nil {
		return domain.ChangeStats{}, f.plansErr
	}
	return f.stats, nil
}

func (f *fakeService) Refresh(context.Context) error {
	f.refreshCalls++
	return nil
}

func (f *fakeService) LastFetched() (time.Time, bool) {
	return f.fetchedAt, !f.fetchedAt.IsZero()
}

func (f *fakeService) InFlight(planID string) (domain.Action, bool) {
	action, ok := f.inflight[planID]
	return action, ok
}

func (f *fakeService) RecentAudit(context.Context, int) ([]app.AuditEntry, error) {
	if f.auditErr != nil {
		return nil, f.auditErr
	}
	return f.audit, nil
}

func (f *fakeService) dispatch(action domain.Action, planID, note string) (domain.ActionResult, error) {
	f.lastAction = action
	f.lastPlanID = planID
	f.lastNote = note
	f.dispatchCounts[action]++
	if f.actionErr != nil {
		return domain.ActionResult{}, f.actionErr
	}
	return f.actionResult, nil
}

func (f *fakeService) Approve(_ context.Context, planID, notes string) (domain.ActionResult, error) {
	return f.dispatch(domain.ActionApprove, planID, notes)
}

func (f *fakeService) Apply(_ context.Context, planID string) (domain.ActionResult, error) {
	return f.dispatch(domain.ActionApply, planID, "")
}

func (f *fakeService) DryRun(_ context.Context, planID string) (domain.DryRunResult, error) {
	_, err := f.dispatch(domain.ActionDryRun, planID, "")
	if err != nil {
		return domain.DryRunResult{}, err
	}
	return f.dryRunResult, nil
}

func (f *fakeService) Rollback(_ context.Context, planID, reason string) (domain.ActionResult, error) {
	return f.dispatch(domain.ActionRollback, planID, reason)
}

func allEnabledFlags() domain.FeatureFlags {
	return domain.FeatureFlags{Enabled: true, ApplyEnabled: true, RollbackEnabled: true, DryRunEnabled: true}
}

func testPlans(now time.Time) []domain.ChangePlan {
	return []domain.ChangePlan{
		{ID: "p-draft", Name: "Reprice cruises", Scope: "pricing", Status: domain.StatusDraft, RiskLevel: domain.RiskLow, CreatedAt: now},
		{ID: "p-sub", Name: "Merge hotels", Scope: "entities", Status: domain.StatusSubmitted, RiskLevel: domain.RiskHigh, CreatedAt: now},
		{ID: "p-appr", Name: "Retag articles", Scope: "content", Status: domain.StatusApproved, RiskLevel: domain.RiskMedium, CreatedAt: now},
		{ID: "p-done", Name: "Archive expired", Scope: "content", Status: domain.StatusCompleted, RiskLevel: domain.RiskLow, CreatedAt: now},
	}
}

func TestModelLoadAndTabNavigation(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	if len(m.plans) != 4 || m.total != 4 {
		t.Fatalf("expected 4 loaded plans, got %d (total %d)", len(m.plans), m.total)
	}
	if m.tab != domain.TabAll {
		t.Fatalf("expected all tab, got %v", m.tab)
	}

	m = applyMsg(t, m, keyRune('j'))
	if m.selected != 1 {
		t.Fatalf("expected selection 1, got %d", m.selected)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.tab != domain.TabPending {
		t.Fatalf("expected pending tab, got %v", m.tab)
	}
	visible := m.visiblePlans()
	if len(visible) != 1 || visible[0].ID != "p-sub" {
		t.Fatalf("expected only submitted plan on pending tab, got %+v", visible)
	}
	if m.selected != 0 {
		t.Fatalf("expected selection reset on tab switch, got %d", m.selected)
	}
}

func TestModelRefreshKeyInvalidatesAndReloads(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('r'))
	if svc.refreshCalls != 1 {
		t.Fatalf("expected one refresh call, got %d", svc.refreshCalls)
	}
	if m.err != nil {
		t.Fatalf("unexpected error after refresh: %v", m.err)
	}
}

func TestModelApproveDialogSubmitsNotes(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('a'))
	if m.mode != modeActionDialog || m.dialogAction != domain.ActionApprove {
		t.Fatalf("expected approve dialog, got mode=%v action=%v", m.mode, m.dialogAction)
	}

	for _, r := range "ok" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if svc.lastAction != domain.ActionApprove || svc.lastPlanID != "p-sub" || svc.lastNote != "ok" {
		t.Fatalf("unexpected dispatch: action=%v plan=%q note=%q", svc.lastAction, svc.lastPlanID, svc.lastNote)
	}
	if m.mode != modeNone {
		t.Fatalf("expected dialog closed on success, got %v", m.mode)
	}
	if m.noteInput.Value() != "" {
		t.Fatalf("expected notes cleared on success, got %q", m.noteInput.Value())
	}
}

func TestModelDialogEscDiscardsNotes(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('a'))
	for _, r := range "abc" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	if m.mode != modeNone {
		t.Fatalf("expected dialog dismissed, got %v", m.mode)
	}
	if m.noteInput.Value() != "" {
		t.Fatalf("expected notes discarded on cancel, got %q", m.noteInput.Value())
	}
	if svc.lastAction != "" {
		t.Fatalf("expected no dispatch after cancel, got %v", svc.lastAction)
	}
}

func TestModelFailedActionKeepsDialogWithServerMessage(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	svc.actionErr = errors.New("plan was already approved by another user")
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('a'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeActionDialog {
		t.Fatalf("expected dialog to stay open on failure, got %v", m.mode)
	}
	if m.notice != "plan was already approved by another user" {
		t.Fatalf("expected verbatim server message, got %q", m.notice)
	}
}

func TestModelApplyRequiresConfirmation(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('x'))
	if m.mode != modeConfirm || m.confirmPlanID != "p-appr" {
		t.Fatalf("expected apply confirm modal for p-appr, got mode=%v plan=%q", m.mode, m.confirmPlanID)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if svc.lastAction != domain.ActionApply || svc.lastPlanID != "p-appr" {
		t.Fatalf("unexpected dispatch: %v %q", svc.lastAction, svc.lastPlanID)
	}
	if m.mode != modeNone {
		t.Fatalf("expected confirm closed after dispatch, got %v", m.mode)
	}
	if !strings.Contains(m.notice, "exec-1") {
		t.Fatalf("expected execution id in notice, got %q", m.notice)
	}
}

func TestModelApplyFailureShowsMessageInConfirmModal(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	svc.actionErr = errors.New("apply rejected: plan drifted")
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('x'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeConfirm {
		t.Fatalf("expected confirm modal to stay open on failure, got %v", m.mode)
	}
	if m.notice != "apply rejected: plan drifted" {
		t.Fatalf("expected verbatim server message, got %q", m.notice)
	}
	overlay := m.renderModeOverlay(lipgloss.Color("62"), lipgloss.Color("241"), 80)
	if !strings.Contains(overlay, "apply rejected: plan drifted") {
		t.Fatalf("expected server message rendered in confirm modal, got %q", overlay)
	}
}

func TestModelApplyConfirmNoCancels(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('x'))
	m = applyMsg(t, m, keyRune('n'))

	if m.mode != modeNone {
		t.Fatalf("expected confirm dismissed, got %v", m.mode)
	}
	if svc.lastAction != "" {
		t.Fatalf("expected no dispatch after cancel, got %v", svc.lastAction)
	}
}

func TestModelDryRunDispatchesWithoutDialog(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('d'))
	if svc.lastAction != domain.ActionDryRun || svc.lastPlanID != "p-draft" {
		t.Fatalf("unexpected dispatch: %v %q", svc.lastAction, svc.lastPlanID)
	}
	if !strings.Contains(m.notice, "7 changes would apply") {
		t.Fatalf("expected dry-run summary in notice, got %q", m.notice)
	}
}

func TestModelGatingRefusesDisallowedAction(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	// The cursor starts on a draft plan; approve only applies to submitted.
	m = applyMsg(t, m, keyRune('a'))
	if m.mode != modeNone {
		t.Fatalf("expected no dialog for disallowed approve, got %v", m.mode)
	}
	if svc.lastAction != "" {
		t.Fatalf("expected no dispatch, got %v", svc.lastAction)
	}
	if !strings.Contains(m.notice, "not available") {
		t.Fatalf("expected refusal notice, got %q", m.notice)
	}
}

func TestModelKillSwitchBlocksActionsAndShowsBanner(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	flags := allEnabledFlags()
	flags.Enabled = false
	svc := newFakeService(testPlans(now), flags)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('a'))
	if svc.lastAction != "" {
		t.Fatalf("expected no dispatch while disabled, got %v", svc.lastAction)
	}
	if m.notice != disabledBanner {
		t.Fatalf("expected disabled notice, got %q", m.notice)
	}

	v := m.View()
	if v.Content == nil {
		t.Fatal("expected view content")
	}
}

func TestModelBannerDismissesAndRearms(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	flags := allEnabledFlags()
	flags.Enabled = false
	svc := newFakeService(testPlans(now), flags)
	m := loadReadyModel(t, NewModel(svc))

	if !m.showDisabledBanner() {
		t.Fatal("expected banner while disabled")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.showDisabledBanner() {
		t.Fatal("expected banner hidden after dismiss")
	}

	// A disabled refetch keeps the dismissal; re-enabling re-arms it so a
	// later disable shows the banner again.
	m = applyMsg(t, m, loadedMsg{stats: domain.ChangeStats{Flags: flags}})
	if m.showDisabledBanner() {
		t.Fatal("expected dismissal to persist across disabled refetch")
	}
	enabled := allEnabledFlags()
	m = applyMsg(t, m, loadedMsg{stats: domain.ChangeStats{Flags: enabled}})
	m = applyMsg(t, m, loadedMsg{stats: domain.ChangeStats{Flags: flags}})
	if !m.showDisabledBanner() {
		t.Fatal("expected banner back after disable returns")
	}
}

func TestModelInFlightPlanRefusesSecondDispatch(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	svc.inflight["p-sub"] = domain.ActionApprove
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('a'))
	if m.mode != modeNone {
		t.Fatalf("expected no dialog while plan busy, got %v", m.mode)
	}
	if !strings.Contains(m.notice, "busy") {
		t.Fatalf("expected busy notice, got %q", m.notice)
	}
}

func TestModelRollbackDialogSubmitsReason(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))

	for i := 0; i < 3; i++ {
		m = applyMsg(t, m, keyRune('j'))
	}
	m = applyMsg(t, m, keyRune('b'))
	if m.mode != modeActionDialog || m.dialogAction != domain.ActionRollback {
		t.Fatalf("expected rollback dialog, got mode=%v action=%v", m.mode, m.dialogAction)
	}

	for _, r := range "bad data" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if svc.lastAction != domain.ActionRollback || svc.lastPlanID != "p-done" || svc.lastNote != "bad data" {
		t.Fatalf("unexpected dispatch: action=%v plan=%q reason=%q", svc.lastAction, svc.lastPlanID, svc.lastNote)
	}
}

func TestModelRollbackWithoutConfirmDispatchesDirectly(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc, WithConfirmRollback(false)))

	for i := 0; i < 3; i++ {
		m = applyMsg(t, m, keyRune('j'))
	}
	m = applyMsg(t, m, keyRune('b'))
	if svc.lastAction != domain.ActionRollback || svc.lastNote != "" {
		t.Fatalf("expected direct rollback with empty reason, got %v %q", svc.lastAction, svc.lastNote)
	}
}

func TestModelDetailAndAuditOverlays(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	plans := testPlans(now)
	plans[0].Description = "## Repricing\n\nAdjust cruise base fares."
	plans[0].ImpactSummary = &domain.ImpactSummary{ContentAffected: 12, Warnings: []string{"touches published pages"}}
	svc := newFakeService(plans, allEnabledFlags())
	svc.audit = []app.AuditEntry{
		{ID: "a1", PlanID: "p-sub", Action: domain.ActionApprove, Outcome: app.AuditOutcomeOK, CreatedAt: now},
	}
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeDetail {
		t.Fatalf("expected detail mode, got %v", m.mode)
	}
	if overlay := m.renderModeOverlay(lipgloss.Color("62"), lipgloss.Color("241"), 80); !strings.Contains(overlay, "p-draft") {
		t.Fatalf("expected plan id in detail overlay, got %q", overlay)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	m = applyMsg(t, m, keyRune('g'))
	if m.mode != modeAudit {
		t.Fatalf("expected audit mode, got %v", m.mode)
	}
	if len(m.auditEntries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(m.auditEntries))
	}
	if overlay := m.renderModeOverlay(lipgloss.Color("62"), lipgloss.Color("241"), 80); !strings.Contains(overlay, "approve") {
		t.Fatalf("expected audit action in overlay, got %q", overlay)
	}
}

func TestModelDefaultTabOption(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newFakeService(testPlans(now), allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc, WithDefaultTab(domain.TabPending)))
	if m.tab != domain.TabPending {
		t.Fatalf("expected pending default tab, got %v", m.tab)
	}
}

func TestModelQuitKey(t *testing.T) {
	svc := newFakeService(nil, allEnabledFlags())
	m := loadReadyModel(t, NewModel(svc))
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

func TestModelLoadErrorShowsErrorView(t *testing.T) {
	svc := newFakeService(nil, allEnabledFlags())
	svc.plansErr = errors.New("connect: connection refused")
	m := NewModel(svc)
	m = applyCmd(t, m, m.Init())
	if m.err == nil {
		t.Fatal("expected load error recorded")
	}
	v := m.View()
	if v.Content == nil {
		t.Fatal("expected error view content")
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 140, Height: 42})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
