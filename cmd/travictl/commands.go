package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/travi-platform/travictl/internal/app"
	"github.com/travi-platform/travictl/internal/domain"
	"github.com/travi-platform/travictl/internal/platform"
)

// defaultAuditListLimit caps the audit subcommand output.
const defaultAuditListLimit = 20

// newPlansCommand lists change plans, optionally filtered by tab.
func newPlansCommand(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		tabName   string
		asJSON    bool
		showScope bool
	)
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "list change plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(flags, stderr)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			tab, ok := domain.ParseTab(tabName)
			if !ok {
				return fmt.Errorf("unknown tab %q (all, pending, approved, completed)", tabName)
			}
			list, err := rt.service.Plans(cmd.Context())
			if err != nil {
				return fmt.Errorf("list plans: %w", err)
			}
			plans := domain.FilterPlans(list.Plans, tab)
			if asJSON {
				return writeJSON(stdout, plansPayload(plans, list.Total))
			}

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tRISK\tSCOPE\tCREATED\tIMPACT")
			for _, plan := range plans {
				impact := "-"
				if plan.ImpactSummary != nil {
					impact = fmt.Sprintf("%dc/%de/%dl", plan.ImpactSummary.ContentAffected,
						plan.ImpactSummary.EntitiesAffected, plan.ImpactSummary.LinksAffected)
					if warnings := len(plan.ImpactSummary.Warnings); warnings > 0 {
						impact += fmt.Sprintf(" (%d warnings)", warnings)
					}
				}
				scope := plan.Scope
				if !showScope {
					scope = truncateColumn(scope, 24)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					plan.ID, plan.Name, domain.StatusDisplay(plan.Status).Label,
					domain.RiskDisplay(plan.RiskLevel).Label, scope,
					plan.CreatedAt.Format("2006-01-02"), impact)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "\n%d shown • %d total on server\n", len(plans), list.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&tabName, "tab", string(domain.TabAll), "tab filter: all, pending, approved, completed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	cmd.Flags().BoolVar(&showScope, "full-scope", false, "do not truncate the scope column")
	return cmd
}

// newStatsCommand prints change-management stats and feature flags.
func newStatsCommand(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "show change-management stats and feature flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(flags, stderr)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			stats, err := rt.service.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch stats: %w", err)
			}
			if asJSON {
				return writeJSON(stdout, statsJSONPayload(stats))
			}

			fmt.Fprintf(stdout, "enabled: %t\n", stats.Flags.Enabled)
			fmt.Fprintf(stdout, "apply_enabled: %t\n", stats.Flags.ApplyEnabled)
			fmt.Fprintf(stdout, "rollback_enabled: %t\n", stats.Flags.RollbackEnabled)
			fmt.Fprintf(stdout, "dry_run_enabled: %t\n", stats.Flags.DryRunEnabled)
			fmt.Fprintf(stdout, "total_plans: %d\n", stats.TotalPlans)
			fmt.Fprintf(stdout, "recent_activity: %d\n", stats.RecentActivity)
			for _, status := range domain.KnownStatuses() {
				if count := stats.ByStatus[status]; count > 0 {
					fmt.Fprintf(stdout, "  %s: %d\n", status, count)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

// newActionCommand builds one mutating plan subcommand. All four actions
// share shape: dispatch through the service, print the acknowledgement.
func newActionCommand(flags *rootFlags, stdout, stderr io.Writer, action domain.Action) *cobra.Command {
	var (
		notes  string
		reason string
		yes    bool
		asJSON bool
	)
	short := map[domain.Action]string{
		domain.ActionApprove:  "approve a submitted plan",
		domain.ActionApply:    "apply an approved plan",
		domain.ActionDryRun:   "dry-run a plan without applying",
		domain.ActionRollback: "roll back a completed or failed plan",
	}[action]

	cmd := &cobra.Command{
		Use:   string(action) + " <plan-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := args[0]
			if (action == domain.ActionApply || action == domain.ActionRollback) && !yes {
				return fmt.Errorf("%s mutates platform content; re-run with --yes to confirm", action)
			}

			rt, err := newRuntime(flags, stderr)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			result, dryRun, err := dispatchAction(cmd.Context(), rt.service, action, planID, notes, reason)
			if err != nil {
				return err
			}
			if asJSON {
				if action == domain.ActionDryRun {
					return writeJSON(stdout, map[string]any{
						"success":           dryRun.Success,
						"changesWouldApply": dryRun.ChangesWouldApply,
					})
				}
				return writeJSON(stdout, map[string]any{"executionId": result.ExecutionID})
			}

			switch action {
			case domain.ActionDryRun:
				fmt.Fprintf(stdout, "dry run success=%t: %d changes would apply\n", dryRun.Success, dryRun.ChangesWouldApply)
			default:
				if result.ExecutionID != "" {
					fmt.Fprintf(stdout, "%s accepted: execution %s\n", action, result.ExecutionID)
				} else {
					fmt.Fprintf(stdout, "%s accepted\n", action)
				}
			}
			return nil
		},
	}
	switch action {
	case domain.ActionApprove:
		cmd.Flags().StringVar(&notes, "notes", "", "approval notes")
	case domain.ActionRollback:
		cmd.Flags().StringVar(&reason, "reason", "", "rollback reason")
	}
	if action == domain.ActionApply || action == domain.ActionRollback {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the mutation")
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

// dispatchAction maps one action name onto its service call.
func dispatchAction(ctx context.Context, svc *app.Service, action domain.Action, planID, notes, reason string) (domain.ActionResult, domain.DryRunResult, error) {
	switch action {
	case domain.ActionApprove:
		result, err := svc.Approve(ctx, planID, notes)
		return result, domain.DryRunResult{}, err
	case domain.ActionApply:
		result, err := svc.Apply(ctx, planID)
		return result, domain.DryRunResult{}, err
	case domain.ActionDryRun:
		dryRun, err := svc.DryRun(ctx, planID)
		return domain.ActionResult{}, dryRun, err
	case domain.ActionRollback:
		result, err := svc.Rollback(ctx, planID, reason)
		return result, domain.DryRunResult{}, err
	default:
		return domain.ActionResult{}, domain.DryRunResult{}, fmt.Errorf("unknown action: %s", action)
	}
}

// newAuditCommand lists locally recorded action dispatches.
func newAuditCommand(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "show recent locally recorded actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(flags, stderr)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			entries, err := rt.service.RecentAudit(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}
			if asJSON {
				return writeJSON(stdout, auditJSONPayload(entries))
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "no recorded actions")
				return nil
			}

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tPLAN\tOUTCOME\tDETAIL")
			for _, entry := range entries {
				detail := entry.ExecutionID
				if entry.Outcome == app.AuditOutcomeError {
					detail = entry.Message
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					entry.CreatedAt.Format(time.RFC3339), entry.Action, entry.PlanID, entry.Outcome, detail)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultAuditListLimit, "maximum entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

// newPathsCommand prints resolved config and data locations.
func newPathsCommand(flags *rootFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "show resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: flags.appName,
				DevMode: flags.devMode,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "app: %s\n", flags.appName)
			fmt.Fprintf(stdout, "dev_mode: %t\n", flags.devMode)
			fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			fmt.Fprintf(stdout, "audit_db: %s\n", paths.AuditDBPath)
			fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// planJSON is the CLI JSON shape for one plan.
type planJSON struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    domain.PlanStatus `json:"status"`
	RiskLevel domain.RiskLevel  `json:"riskLevel"`
	Scope     string            `json:"scope"`
	CreatedAt time.Time         `json:"createdAt"`
	Impact    *impactJSON       `json:"impactSummary,omitempty"`
}

// impactJSON is the CLI JSON shape for an impact summary.
type impactJSON struct {
	ContentAffected  int      `json:"contentAffected"`
	EntitiesAffected int      `json:"entitiesAffected"`
	LinksAffected    int      `json:"linksAffected"`
	Warnings         []string `json:"warnings,omitempty"`
}

// plansPayload shapes the plans list for JSON output.
func plansPayload(plans []domain.ChangePlan, total int) map[string]any {
	out := make([]planJSON, 0, len(plans))
	for _, plan := range plans {
		entry := planJSON{
			ID:        plan.ID,
			Name:      plan.Name,
			Status:    plan.Status,
			RiskLevel: plan.RiskLevel,
			Scope:     plan.Scope,
			CreatedAt: plan.CreatedAt,
		}
		if plan.ImpactSummary != nil {
			entry.Impact = &impactJSON{
				ContentAffected:  plan.ImpactSummary.ContentAffected,
				EntitiesAffected: plan.ImpactSummary.EntitiesAffected,
				LinksAffected:    plan.ImpactSummary.LinksAffected,
				Warnings:         plan.ImpactSummary.Warnings,
			}
		}
		out = append(out, entry)
	}
	return map[string]any{"plans": out, "total": total}
}

// statsJSONPayload shapes stats for JSON output.
func statsJSONPayload(stats domain.ChangeStats) map[string]any {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return map[string]any{
		"flags": map[string]bool{
			"enabled":         stats.Flags.Enabled,
			"applyEnabled":    stats.Flags.ApplyEnabled,
			"rollbackEnabled": stats.Flags.RollbackEnabled,
			"dryRunEnabled":   stats.Flags.DryRunEnabled,
		},
		"totalPlans":     stats.TotalPlans,
		"byStatus":       byStatus,
		"recentActivity": stats.RecentActivity,
	}
}

// auditJSONPayload shapes audit entries for JSON output.
func auditJSONPayload(entries []app.AuditEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		out = append(out, map[string]any{
			"id":          entry.ID,
			"planId":      entry.PlanID,
			"action":      entry.Action,
			"notes":       entry.Notes,
			"outcome":     entry.Outcome,
			"message":     entry.Message,
			"executionId": entry.ExecutionID,
			"createdAt":   entry.CreatedAt,
		})
	}
	return out
}

// truncateColumn truncates a table cell to maxRunes, never splitting a rune.
func truncateColumn(s string, maxRunes int) string {
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(rs[:maxRunes])
	}
	return string(rs[:maxRunes-1]) + "…"
}

// writeJSON writes indented JSON with a trailing newline.
func writeJSON(stdout io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := stdout.Write(encoded); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
