package app

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hylla/tidsplan/internal/domain"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeArchive and related constants define package defaults.
const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode DeleteMode
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeArchive
	}

	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
	}
}

// EnsureDefaultProject ensures default project.
func (s *Service) EnsureDefaultProject(ctx context.Context) (domain.Project, error) {
	projects, err := s.repo.ListProjects(ctx, false)
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) > 0 {
		return projects[0], nil
	}

	project, err := domain.NewProject(s.idGen(), "Timeline", "Default project", s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, name, description string) (domain.Project, error) {
	project, err := domain.NewProject(s.idGen(), name, description, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateProject updates state for the requested operation.
func (s *Service) UpdateProject(ctx context.Context, projectID, name, description string) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.UpdateDetails(name, description, s.clock()); err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// GetProject gets project.
func (s *Service) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	return s.repo.GetProject(ctx, projectID)
}

// ListProjects lists projects.
func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, includeArchived)
}

// CreateItemInput holds input values for create item operations.
type CreateItemInput struct {
	ProjectID    string
	ParentID     string
	Title        string
	Notes        string
	Color        string
	StartKey     string
	DurationDays int
}

// CreateItem creates item. New items append to their sibling group.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	items, err := s.repo.ListItems(ctx, in.ProjectID, false)
	if err != nil {
		return domain.Item{}, err
	}
	position := 0
	for _, existing := range items {
		if existing.ParentID == in.ParentID && existing.Position >= position {
			position = existing.Position + 1
		}
	}

	item, err := domain.NewItem(domain.ItemInput{
		ID:           s.idGen(),
		ProjectID:    in.ProjectID,
		ParentID:     in.ParentID,
		Position:     position,
		Title:        in.Title,
		Notes:        in.Notes,
		Color:        in.Color,
		StartKey:     in.StartKey,
		DurationDays: in.DurationDays,
	}, s.clock())
	if err != nil {
		return domain.Item{}, err
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// GetItem gets item.
func (s *Service) GetItem(ctx context.Context, itemID string) (domain.Item, error) {
	return s.repo.GetItem(ctx, itemID)
}

// ListItems lists items ordered parent-first by position.
func (s *Service) ListItems(ctx context.Context, projectID string, includeArchived bool) ([]domain.Item, error) {
	items, err := s.repo.ListItems(ctx, projectID, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b domain.Item) int {
		if a.ParentID != b.ParentID {
			return strings.Compare(a.ParentID, b.ParentID)
		}
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items, nil
}

// RenameItem renames item.
func (s *Service) RenameItem(ctx context.Context, itemID, title string) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if err := item.Rename(title, s.clock()); err != nil {
		return domain.Item{}, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// UpdateItemDetails updates title, notes, and color together.
func (s *Service) UpdateItemDetails(ctx context.Context, itemID, title, notes, color string) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if err := item.UpdateDetails(title, notes, color, s.clock()); err != nil {
		return domain.Item{}, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// SetItemSchedule moves an item on the calendar. A nil start key with
// a nil duration clears the item's dates. This is the drag engine's
// commit target, so it is called many times during one gesture.
func (s *Service) SetItemSchedule(ctx context.Context, itemID string, startKey *string, durationDays *int) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}

	if startKey == nil && durationDays == nil {
		item.ClearSchedule(s.clock())
	} else {
		if startKey == nil || durationDays == nil {
			return domain.Item{}, domain.ErrInvalidDateKey
		}
		if err := item.Schedule(*startKey, *durationDays, s.clock()); err != nil {
			return domain.Item{}, err
		}
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// RestoreItem restores item.
func (s *Service) RestoreItem(ctx context.Context, itemID string) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	item.Restore(s.clock())
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// DeleteItem deletes item.
func (s *Service) DeleteItem(ctx context.Context, itemID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}

	switch mode {
	case DeleteModeArchive:
		item, err := s.repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		item.Archive(s.clock())
		return s.repo.UpdateItem(ctx, item)
	case DeleteModeHard:
		return s.repo.DeleteItem(ctx, itemID)
	default:
		return ErrInvalidDeleteMode
	}
}

// ListSubitems lists the subitems of one parent item.
func (s *Service) ListSubitems(ctx context.Context, projectID, parentID string, includeArchived bool) ([]domain.Item, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, domain.ErrInvalidParentID
	}
	items, err := s.ListItems(ctx, projectID, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0)
	for _, item := range items {
		if item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out, nil
}
