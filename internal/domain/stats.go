package domain

// FeatureFlags are server-reported kill switches that gate whole classes of
// actions instance-wide, independent of any single plan's status.
type FeatureFlags struct {
	Enabled         bool
	ApplyEnabled    bool
	RollbackEnabled bool
	DryRunEnabled   bool
}

// ChangeStats is the process-wide change-management snapshot, refreshed per
// fetch. Counters are display-only.
type ChangeStats struct {
	Flags          FeatureFlags
	TotalPlans     int
	ByStatus       map[PlanStatus]int
	RecentActivity int
}
