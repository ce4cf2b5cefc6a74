package domain

import (
	"testing"
	"time"
)

func TestNewProjectAndSlug(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	p, err := NewProject("p1", "  Launch Roadmap!  ", " desc ", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Slug != "launch-roadmap" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
	if p.Name != "Launch Roadmap!" {
		t.Fatalf("unexpected name %q", p.Name)
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject("", "ok", "", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject("id", "   ", "", now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestProjectArchiveRestore(t *testing.T) {
	now := time.Now()
	p, err := NewProject("p1", "test", "", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	later := now.Add(time.Minute)
	p.Archive(later)
	if p.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	p.Restore(later.Add(time.Minute))
	if p.ArchivedAt != nil {
		t.Fatal("expected archived_at to be nil")
	}
}

func TestNewItemDefaults(t *testing.T) {
	now := time.Now()
	item, err := NewItem(ItemInput{
		ID:        "i1",
		ProjectID: "p1",
		Position:  0,
		Title:     "  Ship feature ",
		Color:     " Blue ",
	}, now)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if item.Title != "Ship feature" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.Color != "blue" {
		t.Fatalf("unexpected color %q", item.Color)
	}
	if item.Dated() {
		t.Fatal("expected undated item")
	}
	if item.IsSubitem() {
		t.Fatal("expected parent item")
	}
}

func TestNewItemValidation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		in   ItemInput
		want error
	}{
		{"missing id", ItemInput{ProjectID: "p1", Title: "x"}, ErrInvalidID},
		{"missing project", ItemInput{ID: "i1", Title: "x"}, ErrInvalidID},
		{"self parent", ItemInput{ID: "i1", ProjectID: "p1", ParentID: "i1", Title: "x"}, ErrInvalidParentID},
		{"missing title", ItemInput{ID: "i1", ProjectID: "p1"}, ErrInvalidTitle},
		{"negative position", ItemInput{ID: "i1", ProjectID: "p1", Title: "x", Position: -1}, ErrInvalidPosition},
		{"bad color", ItemInput{ID: "i1", ProjectID: "p1", Title: "x", Color: "mauve"}, ErrInvalidColor},
		{"bad key", ItemInput{ID: "i1", ProjectID: "p1", Title: "x", StartKey: "21/08/2026", DurationDays: 1}, ErrInvalidDateKey},
		{"dated without duration", ItemInput{ID: "i1", ProjectID: "p1", Title: "x", StartKey: "2026-08-21"}, ErrInvalidDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewItem(tc.in, now); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestItemScheduleAndClear(t *testing.T) {
	now := time.Now()
	item, err := NewItem(ItemInput{ID: "i1", ProjectID: "p1", Title: "x"}, now)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}

	if err := item.Schedule("2026-08-24", 3, now.Add(time.Minute)); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if item.StartKey != "2026-08-24" || item.DurationDays != 3 {
		t.Fatalf("unexpected schedule state %q %d", item.StartKey, item.DurationDays)
	}
	if !item.Dated() {
		t.Fatal("expected dated item")
	}

	if err := item.Schedule("2026-08-24", 0, now); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if err := item.Schedule("", 1, now); err != ErrInvalidDateKey {
		t.Fatalf("expected ErrInvalidDateKey, got %v", err)
	}

	item.ClearSchedule(now.Add(2 * time.Minute))
	if item.StartKey != "" || item.DurationDays != 0 {
		t.Fatalf("expected cleared schedule, got %q %d", item.StartKey, item.DurationDays)
	}
}

func TestItemMutations(t *testing.T) {
	now := time.Now()
	item, err := NewItem(ItemInput{ID: "i1", ProjectID: "p1", ParentID: "t1", Title: "x"}, now)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if !item.IsSubitem() {
		t.Fatal("expected subitem")
	}

	if err := item.Rename("  renamed ", now.Add(time.Minute)); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if item.Title != "renamed" {
		t.Fatalf("unexpected title %q", item.Title)
	}

	if err := item.UpdateDetails("new", "some notes", "green", now.Add(2*time.Minute)); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if item.Notes != "some notes" || item.Color != "green" {
		t.Fatalf("unexpected update state %#v", item)
	}

	if err := item.Reposition(-1, now); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if err := item.Reposition(4, now.Add(3*time.Minute)); err != nil {
		t.Fatalf("Reposition() error = %v", err)
	}
	if item.Position != 4 {
		t.Fatalf("unexpected position %d", item.Position)
	}

	item.Archive(now.Add(4 * time.Minute))
	if item.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	item.Restore(now.Add(5 * time.Minute))
	if item.ArchivedAt != nil {
		t.Fatal("expected archived_at nil")
	}
}
