package domain

// BadgeVariant selects the rendering treatment for a status badge.
type BadgeVariant string

// badge variants used by status display.
const (
	BadgeNeutral BadgeVariant = "neutral"
	BadgeInfo    BadgeVariant = "info"
	BadgeWarning BadgeVariant = "warning"
	BadgeSuccess BadgeVariant = "success"
	BadgeDanger  BadgeVariant = "danger"
)

// StatusInfo describes how one plan status renders.
type StatusInfo struct {
	Label string
	Badge BadgeVariant
	Icon  string
}

// defaultStatusIcon is the fallback icon for unrecognized statuses.
const defaultStatusIcon = "◷"

var statusInfos = map[PlanStatus]StatusInfo{
	StatusDraft:      {Label: "Draft", Badge: BadgeNeutral, Icon: "✎"},
	StatusSubmitted:  {Label: "Submitted", Badge: BadgeWarning, Icon: "◉"},
	StatusApproved:   {Label: "Approved", Badge: BadgeInfo, Icon: "✓"},
	StatusApplying:   {Label: "Applying", Badge: BadgeInfo, Icon: "▶"},
	StatusCompleted:  {Label: "Completed", Badge: BadgeSuccess, Icon: "✔"},
	StatusFailed:     {Label: "Failed", Badge: BadgeDanger, Icon: "✗"},
	StatusRolledBack: {Label: "Rolled Back", Badge: BadgeWarning, Icon: "↺"},
	StatusCancelled:  {Label: "Cancelled", Badge: BadgeNeutral, Icon: "⊘"},
}

// StatusDisplay returns display metadata for any status value. Unrecognized
// statuses render as their raw value with a neutral badge and the default
// clock icon; this lookup never fails.
func StatusDisplay(s PlanStatus) StatusInfo {
	if info, ok := statusInfos[s]; ok {
		return info
	}
	return StatusInfo{Label: string(s), Badge: BadgeNeutral, Icon: defaultStatusIcon}
}

// RiskInfo describes how one risk level renders.
type RiskInfo struct {
	Label string
	Color string
}

var riskInfos = map[RiskLevel]RiskInfo{
	RiskLow:      {Label: "Low", Color: "42"},
	RiskMedium:   {Label: "Medium", Color: "220"},
	RiskHigh:     {Label: "High", Color: "208"},
	RiskCritical: {Label: "Critical", Color: "196"},
}

// riskFallbackColor is the neutral color for unrecognized risk levels.
const riskFallbackColor = "245"

// RiskDisplay returns display metadata for any risk value, with the same
// no-fail fallback contract as StatusDisplay.
func RiskDisplay(r RiskLevel) RiskInfo {
	if info, ok := riskInfos[r]; ok {
		return info
	}
	return RiskInfo{Label: string(r), Color: riskFallbackColor}
}
