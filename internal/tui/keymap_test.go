package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		keys, help := parseBindingKeys("space", ".")
		if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
			t.Fatalf("unexpected parsed space keys %#v", keys)
		}
		if help != "space" {
			t.Fatalf("unexpected space help text %q", help)
		}
	})

	t.Run("plus aliases equals", func(t *testing.T) {
		keys, help := parseBindingKeys("+", "+")
		if len(keys) != 2 || keys[0] != "+" || keys[1] != "=" {
			t.Fatalf("unexpected parsed plus keys %#v", keys)
		}
		if help != "+" {
			t.Fatalf("unexpected plus help text %q", help)
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Z", "z")
		if len(keys) != 2 || keys[0] != "Z" || keys[1] != "shift+z" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Z" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+R", "r")
		if len(keys) != 1 || keys[0] != "ctrl+r" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+R" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "x")
		if len(keys) != 1 || keys[0] != "x" {
			t.Fatalf("unexpected fallback parsed keys %#v", keys)
		}
		if help != "x" {
			t.Fatalf("unexpected fallback help text %q", help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "old"))
	configureBinding(&b, "c", "y", "yank item")
	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "c" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "c" || b.Help().Desc != "yank item" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		ToggleWeekends: "W",
		ZoomIn:         "]",
		ZoomOut:        "[",
		Yank:           "c",
		Detail:         "o",
	})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s key count mismatch got=%#v expected=%#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s key mismatch got=%#v expected=%#v", name, got, expected)
			}
		}
	}

	assertKeys("toggle weekends", k.toggleWeekends, "W", "shift+w")
	assertKeys("zoom in", k.zoomIn, "]")
	assertKeys("zoom out", k.zoomOut, "[")
	assertKeys("yank", k.yank, "c")
	assertKeys("item info", k.itemInfo, "o", "enter")
}

// TestKeyMapApplyConfigDefaults verifies blank overrides reproduce the defaults.
func TestKeyMapApplyConfigDefaults(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{})

	if got := k.toggleWeekends.Keys(); len(got) != 1 || got[0] != "w" {
		t.Fatalf("unexpected toggle weekends keys %#v", got)
	}
	if got := k.zoomIn.Keys(); len(got) != 2 || got[0] != "+" || got[1] != "=" {
		t.Fatalf("unexpected zoom in keys %#v", got)
	}
	if got := k.zoomOut.Keys(); len(got) != 1 || got[0] != "-" {
		t.Fatalf("unexpected zoom out keys %#v", got)
	}
	if got := k.yank.Keys(); len(got) != 1 || got[0] != "y" {
		t.Fatalf("unexpected yank keys %#v", got)
	}
	gotInfo := k.itemInfo.Keys()
	if len(gotInfo) != 2 || gotInfo[0] != "i" || gotInfo[1] != "enter" {
		t.Fatalf("unexpected item info keys %#v", gotInfo)
	}
}
