// Package common provides transport-agnostic server contracts shared by the HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest marks a request that failed transport-level validation.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound marks a missing project or item referenced by a request.
var ErrNotFound = errors.New("not found")

// ErrTimelineUnavailable marks requests made before the timeline service is configured.
var ErrTimelineUnavailable = errors.New("timeline service unavailable")

// TimelineProject is the wire representation of one project.
type TimelineProject struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TimelineItem is the wire representation of one timeline bar or backlog row.
type TimelineItem struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	ParentID     string    `json:"parent_id,omitempty"`
	Position     int       `json:"position"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes,omitempty"`
	Color        string    `json:"color,omitempty"`
	StartKey     string    `json:"start_key,omitempty"`
	DurationDays int       `json:"duration_days,omitempty"`
	Archived     bool      `json:"archived,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TimelineView is the response payload for one timeline listing.
type TimelineView struct {
	CapturedAt time.Time       `json:"captured_at"`
	Project    TimelineProject `json:"project"`
	Items      []TimelineItem  `json:"items"`
}

// ListTimelineRequest selects the project whose timeline should be listed.
// An empty ProjectID resolves to the first active project.
type ListTimelineRequest struct {
	ProjectID       string `json:"project_id,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
}

// SetScheduleRequest places one item on the calendar.
type SetScheduleRequest struct {
	ItemID       string `json:"item_id"`
	StartKey     string `json:"start_key"`
	DurationDays int    `json:"duration_days"`
}

// ClearScheduleRequest removes one item's dates, returning it to the backlog.
type ClearScheduleRequest struct {
	ItemID string `json:"item_id"`
}

// CreateItemRequest creates one item or subitem.
type CreateItemRequest struct {
	ProjectID    string `json:"project_id,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	Title        string `json:"title"`
	Notes        string `json:"notes,omitempty"`
	Color        string `json:"color,omitempty"`
	StartKey     string `json:"start_key,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// TimelineService is the app-facing contract both transports call into.
type TimelineService interface {
	ListTimeline(ctx context.Context, in ListTimelineRequest) (TimelineView, error)
	SetItemSchedule(ctx context.Context, in SetScheduleRequest) (TimelineItem, error)
	ClearItemSchedule(ctx context.Context, in ClearScheduleRequest) (TimelineItem, error)
	CreateItem(ctx context.Context, in CreateItemRequest) (TimelineItem, error)
}
