package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service timeline APIs.
type AppServiceAdapter struct {
	service *app.Service
	clock   func() time.Time
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{
		service: service,
		clock:   time.Now,
	}
}

// ListTimeline resolves one project's full timeline view through app-level APIs.
func (a *AppServiceAdapter) ListTimeline(ctx context.Context, in ListTimelineRequest) (TimelineView, error) {
	if a == nil || a.service == nil {
		return TimelineView{}, fmt.Errorf("app service adapter is not configured: %w", ErrTimelineUnavailable)
	}

	project, err := a.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return TimelineView{}, err
	}

	items, err := a.service.ListItems(ctx, project.ID, in.IncludeArchived)
	if err != nil {
		return TimelineView{}, mapAppError("list items", err)
	}

	view := TimelineView{
		CapturedAt: a.clock().UTC(),
		Project: TimelineProject{
			ID:          project.ID,
			Slug:        project.Slug,
			Name:        project.Name,
			Description: project.Description,
		},
		Items: make([]TimelineItem, 0, len(items)),
	}
	for _, item := range items {
		view.Items = append(view.Items, mapDomainItem(item))
	}
	return view, nil
}

// SetItemSchedule places one item on the calendar through app-level APIs.
func (a *AppServiceAdapter) SetItemSchedule(ctx context.Context, in SetScheduleRequest) (TimelineItem, error) {
	if a == nil || a.service == nil {
		return TimelineItem{}, fmt.Errorf("app service adapter is not configured: %w", ErrTimelineUnavailable)
	}

	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return TimelineItem{}, fmt.Errorf("item_id is required: %w", ErrInvalidRequest)
	}
	startKey := strings.TrimSpace(in.StartKey)
	if startKey == "" {
		return TimelineItem{}, fmt.Errorf("start_key is required: %w", ErrInvalidRequest)
	}
	if in.DurationDays < 1 {
		return TimelineItem{}, fmt.Errorf("duration_days must be >= 1: %w", ErrInvalidRequest)
	}

	duration := in.DurationDays
	item, err := a.service.SetItemSchedule(ctx, itemID, &startKey, &duration)
	if err != nil {
		return TimelineItem{}, mapAppError("set item schedule", err)
	}
	return mapDomainItem(item), nil
}

// ClearItemSchedule removes one item's dates through app-level APIs.
func (a *AppServiceAdapter) ClearItemSchedule(ctx context.Context, in ClearScheduleRequest) (TimelineItem, error) {
	if a == nil || a.service == nil {
		return TimelineItem{}, fmt.Errorf("app service adapter is not configured: %w", ErrTimelineUnavailable)
	}

	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return TimelineItem{}, fmt.Errorf("item_id is required: %w", ErrInvalidRequest)
	}

	item, err := a.service.SetItemSchedule(ctx, itemID, nil, nil)
	if err != nil {
		return TimelineItem{}, mapAppError("clear item schedule", err)
	}
	return mapDomainItem(item), nil
}

// CreateItem creates one item or subitem through app-level APIs.
func (a *AppServiceAdapter) CreateItem(ctx context.Context, in CreateItemRequest) (TimelineItem, error) {
	if a == nil || a.service == nil {
		return TimelineItem{}, fmt.Errorf("app service adapter is not configured: %w", ErrTimelineUnavailable)
	}

	if strings.TrimSpace(in.Title) == "" {
		return TimelineItem{}, fmt.Errorf("title is required: %w", ErrInvalidRequest)
	}

	project, err := a.resolveProject(ctx, in.ProjectID)
	if err != nil {
		return TimelineItem{}, err
	}

	item, err := a.service.CreateItem(ctx, app.CreateItemInput{
		ProjectID:    project.ID,
		ParentID:     strings.TrimSpace(in.ParentID),
		Title:        in.Title,
		Notes:        in.Notes,
		Color:        in.Color,
		StartKey:     in.StartKey,
		DurationDays: in.DurationDays,
	})
	if err != nil {
		return TimelineItem{}, mapAppError("create item", err)
	}
	return mapDomainItem(item), nil
}

// resolveProject resolves an explicit project id or falls back to the first active project.
func (a *AppServiceAdapter) resolveProject(ctx context.Context, projectID string) (domain.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID != "" {
		project, err := a.service.GetProject(ctx, projectID)
		if err != nil {
			return domain.Project{}, mapAppError("get project", err)
		}
		return project, nil
	}

	projects, err := a.service.ListProjects(ctx, false)
	if err != nil {
		return domain.Project{}, mapAppError("list projects", err)
	}
	if len(projects) == 0 {
		return domain.Project{}, fmt.Errorf("no projects exist: %w", ErrNotFound)
	}
	return projects[0], nil
}

// mapDomainItem converts one domain item into its wire representation.
func mapDomainItem(item domain.Item) TimelineItem {
	return TimelineItem{
		ID:           item.ID,
		ProjectID:    item.ProjectID,
		ParentID:     item.ParentID,
		Position:     item.Position,
		Title:        item.Title,
		Notes:        item.Notes,
		Color:        item.Color,
		StartKey:     item.StartKey,
		DurationDays: item.DurationDays,
		Archived:     item.ArchivedAt != nil,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// mapAppError translates app and domain errors into transport sentinels.
func mapAppError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidDateKey),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidParentID),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidID):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
