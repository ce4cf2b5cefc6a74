package tui

import (
	"slices"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// KeyConfig carries configured overrides for the rebindable keys.
// Blank fields fall back to the defaults.
type KeyConfig struct {
	ToggleWeekends string
	ZoomIn         string
	ZoomOut        string
	Yank           string
	Detail         string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	scrollLeft     key.Binding
	scrollRight    key.Binding
	addItem        key.Binding
	addSubitem     key.Binding
	itemInfo       key.Binding
	renameItem     key.Binding
	deleteItem     key.Binding
	hardDelete     key.Binding
	restoreItem    key.Binding
	clearSchedule  key.Binding
	yank           key.Binding
	toggleWeekends key.Binding
	zoomIn         key.Binding
	zoomOut        key.Binding
	toggleArchived key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "item up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "item down")),
		scrollLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "scroll left")),
		scrollRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "scroll right")),
		addItem:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		addSubitem:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "new subitem")),
		itemInfo:       key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "item info")),
		renameItem:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename item")),
		deleteItem:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete (default)")),
		hardDelete:     key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "hard delete")),
		restoreItem:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore item")),
		clearSchedule:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear dates")),
		yank:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank item")),
		toggleWeekends: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "toggle weekends")),
		zoomIn:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		toggleArchived: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle archived")),
	}
}

// applyConfig rebinds the configurable keys from loaded configuration.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.toggleWeekends, cfg.ToggleWeekends, "w", "toggle weekends")
	configureBinding(&k.zoomIn, cfg.ZoomIn, "+", "zoom in")
	configureBinding(&k.zoomOut, cfg.ZoomOut, "-", "zoom out")
	configureBinding(&k.yank, cfg.Yank, "y", "yank item")

	// enter always opens the item view; the configured detail key is
	// the alias shown first in help.
	keys, helpText := parseBindingKeys(cfg.Detail, "i")
	if !slices.Contains(keys, "enter") {
		keys = append(keys, "enter")
	}
	k.itemInfo = key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpText+"/enter", "item info"))
}

// configureBinding replaces a binding's keys and help label with the
// configured value.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpText := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpText, desc)
}

// parseBindingKeys expands one configured key into its matcher aliases
// and the label to show in help. Blank input uses the fallback key.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	switch raw {
	case "space":
		return []string{" ", "space"}, "space"
	case "+", "=":
		return []string{"+", "="}, "+"
	}
	runes := []rune(raw)
	if len(runes) == 1 {
		if r := runes[0]; unicode.IsUpper(r) {
			return []string{string(r), "shift+" + strings.ToLower(string(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addItem, k.itemInfo, k.renameItem, k.toggleWeekends, k.yank, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addItem, k.addSubitem, k.itemInfo, k.renameItem, k.yank, k.toggleHelp, k.reload, k.quit},
		{k.moveUp, k.moveDown, k.scrollLeft, k.scrollRight, k.toggleWeekends, k.zoomIn, k.zoomOut},
		{k.deleteItem, k.hardDelete, k.restoreItem, k.clearSchedule, k.toggleArchived},
	}
}
