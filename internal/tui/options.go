package tui

import "github.com/travi-platform/travictl/internal/domain"

type Option func(*Model)

// WithDefaultTab selects the tab shown on startup.
func WithDefaultTab(tab domain.Tab) Option {
	return func(m *Model) {
		if parsed, ok := domain.ParseTab(string(tab)); ok {
			m.tab = parsed
		}
	}
}

// WithConfirmApply controls whether apply requires a confirmation modal.
func WithConfirmApply(confirm bool) Option {
	return func(m *Model) {
		m.confirmApply = confirm
	}
}

// WithConfirmRollback controls whether rollback opens the reason dialog
// before dispatching. When disabled, rollback dispatches with an empty
// reason immediately.
func WithConfirmRollback(confirm bool) Option {
	return func(m *Model) {
		m.confirmRollback = confirm
	}
}
