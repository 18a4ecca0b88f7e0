package tui

import (
	"image/color"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/travi-platform/travictl/internal/domain"
)

// badge palette keyed by taxonomy variant.
var badgeColors = map[domain.BadgeVariant]color.Color{
	domain.BadgeNeutral: lipgloss.Color("241"),
	domain.BadgeInfo:    lipgloss.Color("62"),
	domain.BadgeWarning: lipgloss.Color("172"),
	domain.BadgeSuccess: lipgloss.Color("35"),
	domain.BadgeDanger:  lipgloss.Color("160"),
}

// renderStatusBadge renders one plan status as an icon + label badge. Unknown
// statuses come back from the taxonomy with neutral styling, so this never
// renders blank.
func renderStatusBadge(status domain.PlanStatus) string {
	info := domain.StatusDisplay(status)
	bg, ok := badgeColors[info.Badge]
	if !ok {
		bg = badgeColors[domain.BadgeNeutral]
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("231")).
		Background(bg).
		Padding(0, 1)
	return style.Render(info.Icon + " " + info.Label)
}

// renderRiskLabel renders one risk level with its taxonomy color.
func renderRiskLabel(risk domain.RiskLevel) string {
	info := domain.RiskDisplay(risk)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render(info.Label)
}

// renderTabs renders the tab row with the active tab highlighted, including
// per-tab plan counts.
func renderTabs(active domain.Tab, counts map[domain.Tab]int, accent, muted color.Color) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	idleStyle := lipgloss.NewStyle().Foreground(muted)

	parts := make([]string, 0, len(domain.Tabs))
	for _, tab := range domain.Tabs {
		label := tab.Label()
		if count, ok := counts[tab]; ok {
			label = labelWithCount(label, count)
		}
		if tab == active {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, idleStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWithSeparator(parts, idleStyle.Render("  •  "))...)
}

// labelWithCount formats a tab label and its plan count.
func labelWithCount(label string, count int) string {
	return label + " (" + strconv.Itoa(count) + ")"
}

// joinWithSeparator interleaves a separator between parts for horizontal join.
func joinWithSeparator(parts []string, sep string) []string {
	if len(parts) <= 1 {
		return parts
	}
	out := make([]string, 0, len(parts)*2-1)
	for i, part := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, part)
	}
	return out
}