package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/domain"
	_ "modernc.org/sqlite"
)

func TestRepository_ProjectItemLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tidsplan.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	project, err := domain.NewProject("p1", "Roadmap", "desc", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	loadedProject, err := repo.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if loadedProject.Name != "Roadmap" || loadedProject.Slug != "roadmap" {
		t.Fatalf("unexpected project %#v", loadedProject)
	}

	item, err := domain.NewItem(domain.ItemInput{
		ID:           "i1",
		ProjectID:    project.ID,
		Position:     0,
		Title:        "Design review",
		Notes:        "## agenda",
		Color:        "blue",
		StartKey:     "2026-08-25",
		DurationDays: 3,
	}, now)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	loaded, err := repo.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if loaded.StartKey != "2026-08-25" || loaded.DurationDays != 3 || loaded.Color != "blue" {
		t.Fatalf("unexpected item %#v", loaded)
	}
	if !loaded.CreatedAt.Equal(item.CreatedAt) {
		t.Fatalf("created_at round trip: %v vs %v", loaded.CreatedAt, item.CreatedAt)
	}

	if err := loaded.Schedule("2026-09-01", 5, now.Add(time.Minute)); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := repo.UpdateItem(ctx, loaded); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	rescheduled, err := repo.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() after update error = %v", err)
	}
	if rescheduled.StartKey != "2026-09-01" || rescheduled.DurationDays != 5 {
		t.Fatalf("unexpected schedule %q %d", rescheduled.StartKey, rescheduled.DurationDays)
	}
}

func TestRepository_ListItemsFiltersArchived(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Now().UTC()
	project, _ := domain.NewProject("p1", "Roadmap", "", now)
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	active, _ := domain.NewItem(domain.ItemInput{ID: "i1", ProjectID: "p1", Title: "active"}, now)
	archived, _ := domain.NewItem(domain.ItemInput{ID: "i2", ProjectID: "p1", Position: 1, Title: "archived"}, now)
	archived.Archive(now.Add(time.Minute))
	for _, item := range []domain.Item{active, archived} {
		if err := repo.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem(%s) error = %v", item.ID, err)
		}
	}

	visible, err := repo.ListItems(ctx, "p1", false)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "i1" {
		t.Fatalf("unexpected visible items %#v", visible)
	}

	all, err := repo.ListItems(ctx, "p1", true)
	if err != nil {
		t.Fatalf("ListItems() all error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestRepository_DeleteItemCascadesToSubitems(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Now().UTC()
	project, _ := domain.NewProject("p2", "Roadmap", "", now)
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	parent, _ := domain.NewItem(domain.ItemInput{ID: "j1", ProjectID: "p2", Title: "parent"}, now)
	sub, _ := domain.NewItem(domain.ItemInput{ID: "j2", ProjectID: "p2", ParentID: "j1", Title: "sub"}, now)
	for _, item := range []domain.Item{parent, sub} {
		if err := repo.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem(%s) error = %v", item.ID, err)
		}
	}

	if err := repo.DeleteItem(ctx, "j1"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := repo.GetItem(ctx, "j1"); err != app.ErrNotFound {
		t.Fatalf("expected ErrNotFound for parent, got %v", err)
	}
	if _, err := repo.GetItem(ctx, "j2"); err != app.ErrNotFound {
		t.Fatalf("expected ErrNotFound for subitem, got %v", err)
	}

	if err := repo.DeleteItem(ctx, "missing"); err != app.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_MigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tidsplan.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	again, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() second pass error = %v", err)
	}
	_ = again.Close()
}
