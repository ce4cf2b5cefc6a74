package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/tidsplan/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "tidsplan.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Projects   []SnapshotProject `json:"projects"`
	Items      []SnapshotItem    `json:"items"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// SnapshotItem represents snapshot item data used by this package.
type SnapshotItem struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	ParentID     string     `json:"parent_id,omitempty"`
	Position     int        `json:"position"`
	Title        string     `json:"title"`
	Notes        string     `json:"notes,omitempty"`
	Color        string     `json:"color,omitempty"`
	StartKey     string     `json:"start_key,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
}

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
	}

	projects, err := s.repo.ListProjects(ctx, includeArchived)
	if err != nil {
		return Snapshot{}, err
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))

		items, listErr := s.repo.ListItems(ctx, project.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, item := range items {
			snap.Items = append(snap.Items, snapshotItemFromDomain(item))
		}
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot handles import snapshot.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, project := range snap.Projects {
		dp := project.toDomain()
		if _, err := s.repo.GetProject(ctx, dp.ID); err == nil {
			if err := s.repo.UpdateProject(ctx, dp); err != nil {
				return err
			}
			continue
		}
		if err := s.repo.CreateProject(ctx, dp); err != nil {
			return err
		}
	}

	for _, item := range snap.Items {
		di := item.toDomain()
		if _, err := s.repo.GetItem(ctx, di.ID); err == nil {
			if err := s.repo.UpdateItem(ctx, di); err != nil {
				return err
			}
			continue
		}
		if err := s.repo.CreateItem(ctx, di); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks snapshot shape before import.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %q", s.Version)
	}

	projectIDs := map[string]struct{}{}
	for _, project := range s.Projects {
		id := strings.TrimSpace(project.ID)
		if id == "" {
			return errors.New("snapshot project missing id")
		}
		if strings.TrimSpace(project.Name) == "" {
			return fmt.Errorf("snapshot project %q missing name", id)
		}
		if _, ok := projectIDs[id]; ok {
			return fmt.Errorf("snapshot project %q duplicated", id)
		}
		projectIDs[id] = struct{}{}
	}

	itemIDs := map[string]struct{}{}
	for _, item := range s.Items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return errors.New("snapshot item missing id")
		}
		if _, ok := itemIDs[id]; ok {
			return fmt.Errorf("snapshot item %q duplicated", id)
		}
		itemIDs[id] = struct{}{}
		if _, ok := projectIDs[strings.TrimSpace(item.ProjectID)]; !ok {
			return fmt.Errorf("snapshot item %q references unknown project %q", id, item.ProjectID)
		}
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("snapshot item %q missing title", id)
		}
		if item.StartKey != "" {
			if _, err := time.Parse(domain.DateKeyLayout, item.StartKey); err != nil {
				return fmt.Errorf("snapshot item %q has invalid start key %q", id, item.StartKey)
			}
			if item.DurationDays < 1 {
				return fmt.Errorf("snapshot item %q dated without duration", id)
			}
		}
	}
	for _, item := range s.Items {
		parentID := strings.TrimSpace(item.ParentID)
		if parentID == "" {
			continue
		}
		if _, ok := itemIDs[parentID]; !ok {
			return fmt.Errorf("snapshot item %q references unknown parent %q", item.ID, parentID)
		}
	}
	return nil
}

// sort orders snapshot contents deterministically, parents before
// subitems so import never sees a dangling parent reference.
func (s *Snapshot) sort() {
	sort.Slice(s.Projects, func(i, j int) bool {
		return s.Projects[i].ID < s.Projects[j].ID
	})
	sort.Slice(s.Items, func(i, j int) bool {
		a, b := s.Items[i], s.Items[j]
		if (a.ParentID == "") != (b.ParentID == "") {
			return a.ParentID == ""
		}
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if a.ParentID != b.ParentID {
			return a.ParentID < b.ParentID
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		ArchivedAt:  copyTimePtr(p.ArchivedAt),
	}
}

func snapshotItemFromDomain(i domain.Item) SnapshotItem {
	return SnapshotItem{
		ID:           i.ID,
		ProjectID:    i.ProjectID,
		ParentID:     i.ParentID,
		Position:     i.Position,
		Title:        i.Title,
		Notes:        i.Notes,
		Color:        i.Color,
		StartKey:     i.StartKey,
		DurationDays: i.DurationDays,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		ArchivedAt:   copyTimePtr(i.ArchivedAt),
	}
}

func (p SnapshotProject) toDomain() domain.Project {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = fallbackSlug(p.Name)
	}
	return domain.Project{
		ID:          strings.TrimSpace(p.ID),
		Slug:        slug,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		ArchivedAt:  copyTimePtr(p.ArchivedAt),
	}
}

func (i SnapshotItem) toDomain() domain.Item {
	return domain.Item{
		ID:           strings.TrimSpace(i.ID),
		ProjectID:    strings.TrimSpace(i.ProjectID),
		ParentID:     strings.TrimSpace(i.ParentID),
		Position:     max(0, i.Position),
		Title:        strings.TrimSpace(i.Title),
		Notes:        strings.TrimSpace(i.Notes),
		Color:        strings.ToLower(strings.TrimSpace(i.Color)),
		StartKey:     strings.TrimSpace(i.StartKey),
		DurationDays: i.DurationDays,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		ArchivedAt:   copyTimePtr(i.ArchivedAt),
	}
}

func fallbackSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	if slug == "" {
		return "project"
	}
	return slug
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
