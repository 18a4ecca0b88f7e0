package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/travi-platform/travictl/internal/app"
	"github.com/travi-platform/travictl/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Plans(context.Context) (app.PlanList, error)
	Stats(context.Context) (domain.ChangeStats, error)
	Refresh(context.Context) error
	LastFetched() (time.Time, bool)
	InFlight(string) (domain.Action, bool)
	RecentAudit(context.Context, int) ([]app.AuditEntry, error)
	Approve(ctx context.Context, planID, notes string) (domain.ActionResult, error)
	Apply(ctx context.Context, planID string) (domain.ActionResult, error)
	DryRun(ctx context.Context, planID string) (domain.DryRunResult, error)
	Rollback(ctx context.Context, planID, reason string) (domain.ActionResult, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeDetail
	modeActionDialog
	modeConfirm
	modeAudit
)

// audit log limits used by modal rendering.
const (
	auditFetchLimit  = 50
	auditViewWindow  = 14
	disabledBanner   = "change management is disabled"
	dialogNoteLimit  = 240
	detailWrapWidth  = 72
	planIDColumnMax  = 14
	planNameColumn   = 32
	planScopeColumn  = 20
	planImpactColumn = 28
)

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	tab       domain.Tab
	plans     []domain.ChangePlan
	total     int
	stats     domain.ChangeStats
	fetchedAt time.Time
	selected  int

	mode         inputMode
	dialogAction domain.Action
	dialogPlanID string
	noteInput    textinput.Model

	confirmAction domain.Action
	confirmPlanID string
	confirmChoice int

	pending         bool
	notice          string
	bannerDismissed bool

	auditEntries []app.AuditEntry
	md           *markdownRenderer

	confirmApply    bool
	confirmRollback bool
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	plans     []domain.ChangePlan
	total     int
	stats     domain.ChangeStats
	fetchedAt time.Time
	err       error
}

// actionDoneMsg carries one finished action dispatch.
type actionDoneMsg struct {
	action domain.Action
	planID string
	result domain.ActionResult
	dryRun *domain.DryRunResult
	err    error
}

// auditLoadedMsg carries persisted audit entries for modal rendering.
type auditLoadedMsg struct {
	entries []app.AuditEntry
	err     error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	noteInput := textinput.New()
	noteInput.Prompt = "> "
	noteInput.CharLimit = dialogNoteLimit
	m := Model{
		svc:             svc,
		status:          "loading...",
		help:            h,
		keys:            newKeyMap(),
		tab:             domain.TabAll,
		noteInput:       noteInput,
		md:              &markdownRenderer{},
		confirmApply:    true,
		confirmRollback: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.plans = msg.plans
		m.total = msg.total
		// Re-arm the dismissed banner once the feature comes back, so a
		// later disable renders it again.
		if msg.stats.Flags.Enabled {
			m.bannerDismissed = false
		}
		m.stats = msg.stats
		m.fetchedAt = msg.fetchedAt
		m.selected = clamp(m.selected, 0, len(m.visiblePlans())-1)
		if m.status == "" || m.status == "loading..." || m.status == "refreshing..." {
			m.status = "ready"
		}
		return m, nil

	case actionDoneMsg:
		m.pending = false
		if msg.err != nil {
			// The dialog stays open on failure so the operator can retry
			// or cancel; the server's message is shown verbatim.
			m.notice = msg.err.Error()
			m.status = string(msg.action) + " failed"
			return m, nil
		}
		m.mode = modeNone
		m.noteInput.SetValue("")
		m.noteInput.Blur()
		m.notice = actionNotice(msg)
		m.status = string(msg.action) + " accepted"
		return m, m.loadData

	case auditLoadedMsg:
		if msg.err != nil {
			if m.mode == modeAudit {
				m.status = "audit log unavailable: " + msg.err.Error()
			}
			return m, nil
		}
		m.auditEntries = msg.entries
		if m.mode == modeAudit {
			m.status = "audit log"
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles keys for the plan list.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.status = "refreshing..."
		return m, m.refreshData

	case key.Matches(msg, m.keys.moveUp):
		m.selected = clamp(m.selected-1, 0, len(m.visiblePlans())-1)
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		m.selected = clamp(m.selected+1, 0, len(m.visiblePlans())-1)
		return m, nil

	case key.Matches(msg, m.keys.nextTab):
		m.tab = adjacentTab(m.tab, 1)
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.prevTab):
		m.tab = adjacentTab(m.tab, -1)
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.details):
		if _, ok := m.selectedPlan(); !ok {
			m.status = "no plan selected"
			return m, nil
		}
		m.mode = modeDetail
		m.status = "plan details"
		return m, nil

	case key.Matches(msg, m.keys.auditLog):
		m.mode = modeAudit
		m.status = "audit log"
		return m, m.loadAuditLog

	case key.Matches(msg, m.keys.approve):
		return m.startAction(domain.ActionApprove)

	case key.Matches(msg, m.keys.apply):
		return m.startAction(domain.ActionApply)

	case key.Matches(msg, m.keys.dryRun):
		return m.startAction(domain.ActionDryRun)

	case key.Matches(msg, m.keys.rollback):
		return m.startAction(domain.ActionRollback)

	case key.Matches(msg, m.keys.dismiss):
		m.notice = ""
		m.bannerDismissed = true
		return m, nil

	default:
		return m, nil
	}
}

// handleInputModeKey handles keys while a modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDetail, modeAudit:
		switch {
		case key.Matches(msg, m.keys.dismiss), key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.details), key.Matches(msg, m.keys.auditLog):
			m.mode = modeNone
			m.status = "ready"
		}
		return m, nil

	case modeActionDialog:
		if m.pending {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.dismiss):
			// Notes are transient: cancelling discards them.
			m.mode = modeNone
			m.noteInput.SetValue("")
			m.noteInput.Blur()
			m.notice = ""
			m.status = "ready"
			return m, nil
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			return m.confirmedDispatch(m.dialogAction, m.dialogPlanID, strings.TrimSpace(m.noteInput.Value()))
		}
		var cmd tea.Cmd
		m.noteInput, cmd = m.noteInput.Update(msg)
		return m, cmd

	case modeConfirm:
		if m.pending {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.dismiss):
			m.mode = modeNone
			m.status = "ready"
			return m, nil
		case key.Matches(msg, m.keys.prevTab), key.Matches(msg, m.keys.nextTab):
			m.confirmChoice = 1 - m.confirmChoice
			return m, nil
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			if m.confirmChoice != 0 {
				m.mode = modeNone
				m.status = "ready"
				return m, nil
			}
			return m.confirmedDispatch(m.confirmAction, m.confirmPlanID, "")
		}
		switch msg.Text {
		case "y", "Y":
			return m.confirmedDispatch(m.confirmAction, m.confirmPlanID, "")
		case "n", "N":
			m.mode = modeNone
			m.status = "ready"
			return m, nil
		}
		return m, nil

	default:
		return m, nil
	}
}

// startAction gates one requested action for the selected plan and either
// dispatches it, opens its dialog, or refuses with an explanation.
func (m Model) startAction(action domain.Action) (tea.Model, tea.Cmd) {
	plan, ok := m.selectedPlan()
	if !ok {
		m.status = "no plan selected"
		return m, nil
	}
	if !m.stats.Flags.Enabled {
		m.notice = disabledBanner
		return m, nil
	}
	if !domain.ActionAllowed(action, plan.Status, m.stats.Flags) {
		m.notice = fmt.Sprintf("%s is not available for %s plans", action, domain.StatusDisplay(plan.Status).Label)
		return m, nil
	}
	if inflight, busy := m.svc.InFlight(plan.ID); busy {
		m.notice = fmt.Sprintf("plan %s is busy: %s in flight", plan.ID, inflight)
		return m, nil
	}

	switch action {
	case domain.ActionApprove:
		return m.openActionDialog(action, plan.ID, "approval notes (optional)")
	case domain.ActionRollback:
		if !m.confirmRollback {
			return m.confirmedDispatch(action, plan.ID, "")
		}
		return m.openActionDialog(action, plan.ID, "rollback reason")
	case domain.ActionApply:
		if m.confirmApply {
			m.mode = modeConfirm
			m.confirmAction = action
			m.confirmPlanID = plan.ID
			m.confirmChoice = 0
			m.notice = ""
			m.status = "confirm apply"
			return m, nil
		}
		return m.confirmedDispatch(action, plan.ID, "")
	case domain.ActionDryRun:
		return m.confirmedDispatch(action, plan.ID, "")
	default:
		return m, nil
	}
}

// openActionDialog opens the note/reason dialog for one action.
func (m Model) openActionDialog(action domain.Action, planID, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = modeActionDialog
	m.dialogAction = action
	m.dialogPlanID = planID
	m.noteInput.SetValue("")
	m.noteInput.Placeholder = placeholder
	m.notice = ""
	m.status = string(action)
	return m, m.noteInput.Focus()
}

// confirmedDispatch runs one gated action against the service.
func (m Model) confirmedDispatch(action domain.Action, planID, note string) (tea.Model, tea.Cmd) {
	m.pending = true
	m.notice = ""
	m.status = string(action) + " in progress..."
	svc := m.svc
	return m, func() tea.Msg {
		switch action {
		case domain.ActionApprove:
			result, err := svc.Approve(context.Background(), planID, note)
			return actionDoneMsg{action: action, planID: planID, result: result, err: err}
		case domain.ActionApply:
			result, err := svc.Apply(context.Background(), planID)
			return actionDoneMsg{action: action, planID: planID, result: result, err: err}
		case domain.ActionDryRun:
			result, err := svc.DryRun(context.Background(), planID)
			return actionDoneMsg{action: action, planID: planID, dryRun: &result, err: err}
		case domain.ActionRollback:
			result, err := svc.Rollback(context.Background(), planID, note)
			return actionDoneMsg{action: action, planID: planID, result: result, err: err}
		default:
			return actionDoneMsg{action: action, planID: planID}
		}
	}
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	noticeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("215"))
	bannerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)

	header := titleStyle.Render("travictl") + "  change plans"
	if !m.fetchedAt.IsZero() {
		header += statusStyle.Render("  fetched " + m.fetchedAt.Format("15:04:05"))
	}

	sections := []string{header}
	if m.showDisabledBanner() {
		sections = append(sections, bannerStyle.Render(disabledBanner))
	}
	sections = append(sections, renderTabs(m.tab, m.tabCounts(), accent, muted), "")
	sections = append(sections, m.renderPlanTable(accent, muted)...)
	sections = append(sections, "", statusStyle.Render(m.summaryLine()))
	if strings.TrimSpace(m.notice) != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	fullContent := content + "\n" + helpLine
	overlay := m.renderModeOverlay(accent, muted, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.AltScreen = true
	return v
}

// renderPlanTable renders one line per visible plan plus a heading row.
func (m Model) renderPlanTable(accent, muted color.Color) []string {
	plans := m.visiblePlans()
	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	busyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("172"))

	lines := []string{headingStyle.Render("  status           id              name                              risk      created     impact")}
	if len(plans) == 0 {
		lines = append(lines, subStyle.Render("  (no plans on this tab)"))
		return lines
	}
	for idx, plan := range plans {
		prefix := "  "
		if idx == m.selected {
			prefix = "│ "
		}
		row := fmt.Sprintf("%s %s  %s  %s  %s  %s",
			renderStatusBadge(plan.Status),
			pad(truncate(plan.ID, planIDColumnMax), planIDColumnMax),
			pad(truncate(plan.Name, planNameColumn), planNameColumn),
			pad(renderRiskLabel(plan.RiskLevel), 10),
			plan.CreatedAt.Format("2006-01-02"),
			truncate(impactSummaryLine(plan.ImpactSummary), planImpactColumn),
		)
		if action, busy := m.svc.InFlight(plan.ID); busy {
			row += busyStyle.Render("  ⟳ " + string(action))
		}
		line := prefix + row
		if idx == m.selected {
			line = selectedStyle.Render(prefix) + row
		}
		lines = append(lines, line)
		if plan.Scope != "" {
			lines = append(lines, subStyle.Render("    scope: "+truncate(plan.Scope, planScopeColumn*3)))
		}
	}
	return lines
}

// renderModeOverlay renders the modal for the current input mode.
func (m Model) renderModeOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 40, 88))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	switch m.mode {
	case modeDetail:
		plan, ok := m.selectedPlan()
		if !ok {
			return ""
		}
		lines := []string{
			titleStyle.Render("Plan Details"),
			plan.Name,
			hintStyle.Render("id: " + plan.ID + " • scope: " + plan.Scope),
			hintStyle.Render("status: " + domain.StatusDisplay(plan.Status).Label + " • risk: " + domain.RiskDisplay(plan.RiskLevel).Label),
			hintStyle.Render("created: " + plan.CreatedAt.Format(time.RFC3339)),
		}
		if plan.ApprovedAt != nil {
			approved := "approved: " + plan.ApprovedAt.Format(time.RFC3339)
			if plan.ApprovedByUserID != "" {
				approved += " by " + plan.ApprovedByUserID
			}
			lines = append(lines, hintStyle.Render(approved))
		}
		if plan.ImpactSummary != nil {
			impact := plan.ImpactSummary
			lines = append(lines, hintStyle.Render(fmt.Sprintf("impact: %d content • %d entities • %d links",
				impact.ContentAffected, impact.EntitiesAffected, impact.LinksAffected)))
			for _, warning := range impact.Warnings {
				lines = append(lines, warnStyle.Render("⚠ "+warning))
			}
		}
		if rendered := m.md.render(plan.Description, min(detailWrapWidth, maxWidth-4)); rendered != "" {
			lines = append(lines, "", rendered)
		}
		allowed := domain.AllowedActions(plan.Status, m.stats.Flags)
		labels := make([]string, 0, len(allowed))
		for _, action := range allowed {
			labels = append(labels, string(action))
		}
		lines = append(lines, "", hintStyle.Render("available: "+strings.Join(labels, " • ")))
		lines = append(lines, hintStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeActionDialog:
		title := "Approve Plan"
		hint := "enter approve • esc cancel"
		if m.dialogAction == domain.ActionRollback {
			title = "Rollback Plan"
			hint = "enter rollback • esc cancel"
		}
		lines := []string{
			titleStyle.Render(title),
			hintStyle.Render("plan: " + m.dialogPlanID),
			m.noteInput.View(),
		}
		if strings.TrimSpace(m.notice) != "" {
			lines = append(lines, warnStyle.Render(m.notice))
		}
		if m.pending {
			lines = append(lines, hintStyle.Render("working..."))
		} else {
			lines = append(lines, hintStyle.Render(hint))
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeConfirm:
		yes := "[ yes ]"
		no := "[ no ]"
		if m.confirmChoice == 0 {
			yes = titleStyle.Render("[ yes ]")
		} else {
			no = titleStyle.Render("[ no ]")
		}
		lines := []string{
			titleStyle.Render("Apply Plan"),
			"apply plan " + m.confirmPlanID + "?",
			yes + "  " + no,
		}
		if strings.TrimSpace(m.notice) != "" {
			lines = append(lines, warnStyle.Render(m.notice))
		}
		if m.pending {
			lines = append(lines, hintStyle.Render("working..."))
		} else {
			lines = append(lines, hintStyle.Render("enter confirm • tab switch • esc cancel"))
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeAudit:
		lines := []string{titleStyle.Render("Audit Log")}
		if len(m.auditEntries) == 0 {
			lines = append(lines, hintStyle.Render("(no recorded actions)"))
		} else {
			shown := 0
			for _, entry := range m.auditEntries {
				line := fmt.Sprintf("%s  %s %s • %s", entry.CreatedAt.Format("01-02 15:04"), entry.Action, truncate(entry.PlanID, 14), entry.Outcome)
				if entry.Outcome == app.AuditOutcomeError && entry.Message != "" {
					line += " • " + truncate(entry.Message, 32)
				}
				lines = append(lines, line)
				shown++
				if shown >= auditViewWindow {
					break
				}
			}
		}
		lines = append(lines, hintStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	default:
		return ""
	}
}

// renderHelpOverlay renders the expanded help modal.
func (m Model) renderHelpOverlay(accent, muted color.Color) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpBubble := m.help
	helpBubble.ShowAll = true
	return boxStyle.Render(titleStyle.Render("Keys") + "\n" + helpBubble.View(m.keys))
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	list, err := m.svc.Plans(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}
	stats, err := m.svc.Stats(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}
	fetchedAt, _ := m.svc.LastFetched()
	return loadedMsg{plans: list.Plans, total: list.Total, stats: stats, fetchedAt: fetchedAt}
}

// refreshData invalidates cached data and reloads from the API.
func (m Model) refreshData() tea.Msg {
	if err := m.svc.Refresh(context.Background()); err != nil {
		return loadedMsg{err: err}
	}
	return m.loadData()
}

// loadAuditLog loads recent persisted audit entries for modal rendering.
func (m Model) loadAuditLog() tea.Msg {
	entries, err := m.svc.RecentAudit(context.Background(), auditFetchLimit)
	if err != nil {
		return auditLoadedMsg{err: err}
	}
	return auditLoadedMsg{entries: entries}
}

// showDisabledBanner reports whether the disabled warning renders. The
// banner is dismissible for the session; dispatch refusal does not depend
// on it.
func (m Model) showDisabledBanner() bool {
	return !m.stats.Flags.Enabled && !m.bannerDismissed
}

// visiblePlans returns plans retained by the active tab.
func (m Model) visiblePlans() []domain.ChangePlan {
	return domain.FilterPlans(m.plans, m.tab)
}

// selectedPlan returns the plan under the cursor.
func (m Model) selectedPlan() (domain.ChangePlan, bool) {
	plans := m.visiblePlans()
	if len(plans) == 0 {
		return domain.ChangePlan{}, false
	}
	return plans[clamp(m.selected, 0, len(plans)-1)], true
}

// tabCounts counts loaded plans per tab for the tab row.
func (m Model) tabCounts() map[domain.Tab]int {
	counts := make(map[domain.Tab]int, len(domain.Tabs))
	for _, tab := range domain.Tabs {
		counts[tab] = len(domain.FilterPlans(m.plans, tab))
	}
	return counts
}

// summaryLine summarizes the visible and total plan counts.
func (m Model) summaryLine() string {
	visible := len(m.visiblePlans())
	line := fmt.Sprintf("%d of %d plans on this tab • %d total on server", visible, len(m.plans), m.total)
	if m.stats.RecentActivity > 0 {
		line += fmt.Sprintf(" • %d recent actions", m.stats.RecentActivity)
	}
	return line
}

// actionNotice derives the success notification for one finished action.
func actionNotice(msg actionDoneMsg) string {
	switch msg.action {
	case domain.ActionDryRun:
		if msg.dryRun != nil {
			if !msg.dryRun.Success {
				return fmt.Sprintf("dry run finished with failures: %d changes would apply", msg.dryRun.ChangesWouldApply)
			}
			return fmt.Sprintf("dry run ok: %d changes would apply", msg.dryRun.ChangesWouldApply)
		}
		return "dry run finished"
	case domain.ActionApprove:
		return "plan approved"
	case domain.ActionApply:
		if msg.result.ExecutionID != "" {
			return "apply started: execution " + msg.result.ExecutionID
		}
		return "apply started"
	case domain.ActionRollback:
		if msg.result.ExecutionID != "" {
			return "rollback started: execution " + msg.result.ExecutionID
		}
		return "rollback started"
	default:
		return string(msg.action) + " finished"
	}
}

// adjacentTab steps through the tab order, wrapping at both ends.
func adjacentTab(tab domain.Tab, delta int) domain.Tab {
	idx := 0
	for i, candidate := range domain.Tabs {
		if candidate == tab {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(domain.Tabs)) % len(domain.Tabs)
	return domain.Tabs[idx]
}

// impactSummaryLine compacts an impact summary for the table.
func impactSummaryLine(impact *domain.ImpactSummary) string {
	if impact == nil {
		return "-"
	}
	line := fmt.Sprintf("%dc/%de/%dl", impact.ContentAffected, impact.EntitiesAffected, impact.LinksAffected)
	if len(impact.Warnings) > 0 {
		line += fmt.Sprintf(" ⚠%d", len(impact.Warnings))
	}
	return line
}

// pad right-pads s with spaces to the requested rune width.
func pad(s string, width int) string {
	runes := len([]rune(s))
	if runes >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runes)
}

// clamp bounds v to the inclusive range.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(rs[:maxRunes])
	}
	return string(rs[:maxRunes-1]) + "…"
}
