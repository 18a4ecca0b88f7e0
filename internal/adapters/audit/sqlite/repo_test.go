package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/travi-platform/travictl/internal/app"
	"github.com/travi-platform/travictl/internal/domain"
)

func TestRecordAndRecent(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	ctx := context.Background()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	entries := []app.AuditEntry{
		{ID: "a1", PlanID: "p1", Action: domain.ActionApprove, Notes: "ok", Outcome: app.AuditOutcomeOK, CreatedAt: base},
		{ID: "a2", PlanID: "p1", Action: domain.ActionApply, Outcome: app.AuditOutcomeOK, ExecutionID: "exec-42", CreatedAt: base.Add(time.Minute)},
		{ID: "a3", PlanID: "p2", Action: domain.ActionRollback, Outcome: app.AuditOutcomeError, Message: "Rollback failed", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, entry := range entries {
		if err := repo.Record(ctx, entry); err != nil {
			t.Fatalf("Record(%s) error = %v", entry.ID, err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].ID != "a3" || recent[1].ID != "a2" {
		t.Fatalf("expected newest first, got %s, %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].Message != "Rollback failed" || recent[0].Outcome != app.AuditOutcomeError {
		t.Fatalf("unexpected entry: %#v", recent[0])
	}
	if recent[1].ExecutionID != "exec-42" {
		t.Fatalf("expected execution id preserved, got %q", recent[1].ExecutionID)
	}
	if !recent[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp %v", recent[1].CreatedAt)
	}
}

func TestRecordRequiresID(t *testing.T) {
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.Record(context.Background(), app.AuditEntry{PlanID: "p1"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = repo.Close() }()

	out, err := repo.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty log, got %d", len(out))
	}
}
