package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	refresh    key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	nextTab    key.Binding
	prevTab    key.Binding
	details    key.Binding
	approve    key.Binding
	apply      key.Binding
	dryRun     key.Binding
	rollback   key.Binding
	auditLog   key.Binding
	dismiss    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "plan up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "plan down")),
		nextTab:    key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next tab")),
		prevTab:    key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "previous tab")),
		details:    key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("i/enter", "plan details")),
		approve:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		apply:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "apply")),
		dryRun:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dry-run")),
		rollback:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "rollback")),
		auditLog:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "audit log")),
		dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.details, k.approve, k.apply, k.dryRun, k.rollback, k.refresh, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.details, k.approve, k.apply, k.dryRun, k.rollback},
		{k.nextTab, k.prevTab, k.moveUp, k.moveDown},
		{k.auditLog, k.refresh, k.toggleHelp, k.dismiss, k.quit},
	}
}
