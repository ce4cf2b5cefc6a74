package tui

import "testing"

func TestMarkdownRendererCachesByWrapWidth(t *testing.T) {
	var r markdownRenderer
	if got := r.render("", 60); got != "" {
		t.Fatalf("blank input rendered %q", got)
	}
	if r.renderer != nil {
		t.Fatal("blank input must not build a renderer")
	}

	first := r.render("# Notes\n\nbody", 60)
	if first == "" {
		t.Fatal("expected rendered output")
	}
	cached := r.renderer
	r.render("more", 60)
	if r.renderer != cached {
		t.Fatal("expected renderer reuse at the same wrap width")
	}

	// Below the floor the wrap clamps, so tiny widths share one renderer.
	r.render("more", 4)
	if r.wrap != minNoteWrap {
		t.Fatalf("wrap = %d, want floor %d", r.wrap, minNoteWrap)
	}
}
