package domain

import (
	"slices"
	"strings"
	"time"
)

// DateKeyLayout is the canonical day key format used across the
// timeline, storage, and server adapters.
const DateKeyLayout = "2006-01-02"

var validColors = []string{"", "blue", "green", "yellow", "red", "purple", "cyan", "gray"}

type Item struct {
	ID           string
	ProjectID    string
	ParentID     string
	Position     int
	Title        string
	Notes        string
	Color        string
	StartKey     string
	DurationDays int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ArchivedAt   *time.Time
}

type ItemInput struct {
	ID           string
	ProjectID    string
	ParentID     string
	Position     int
	Title        string
	Notes        string
	Color        string
	StartKey     string
	DurationDays int
}

func NewItem(in ItemInput, now time.Time) (Item, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.ParentID = strings.TrimSpace(in.ParentID)
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Color = strings.ToLower(strings.TrimSpace(in.Color))
	in.StartKey = strings.TrimSpace(in.StartKey)

	if in.ID == "" {
		return Item{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Item{}, ErrInvalidID
	}
	if in.ParentID == in.ID && in.ParentID != "" {
		return Item{}, ErrInvalidParentID
	}
	if in.Title == "" {
		return Item{}, ErrInvalidTitle
	}
	if in.Position < 0 {
		return Item{}, ErrInvalidPosition
	}
	if !slices.Contains(validColors, in.Color) {
		return Item{}, ErrInvalidColor
	}

	startKey, durationDays, err := normalizeSchedule(in.StartKey, in.DurationDays)
	if err != nil {
		return Item{}, err
	}

	return Item{
		ID:           in.ID,
		ProjectID:    in.ProjectID,
		ParentID:     in.ParentID,
		Position:     in.Position,
		Title:        in.Title,
		Notes:        in.Notes,
		Color:        in.Color,
		StartKey:     startKey,
		DurationDays: durationDays,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// IsSubitem reports whether the item belongs to a parent task row.
func (i *Item) IsSubitem() bool {
	return i.ParentID != ""
}

// Dated reports whether the item occupies calendar columns.
func (i *Item) Dated() bool {
	return i.StartKey != ""
}

func (i *Item) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	i.Title = title
	i.UpdatedAt = now.UTC()
	return nil
}

func (i *Item) UpdateDetails(title, notes, color string, now time.Time) error {
	title = strings.TrimSpace(title)
	color = strings.ToLower(strings.TrimSpace(color))
	if title == "" {
		return ErrInvalidTitle
	}
	if !slices.Contains(validColors, color) {
		return ErrInvalidColor
	}
	i.Title = title
	i.Notes = strings.TrimSpace(notes)
	i.Color = color
	i.UpdatedAt = now.UTC()
	return nil
}

func (i *Item) Schedule(startKey string, durationDays int, now time.Time) error {
	startKey = strings.TrimSpace(startKey)
	if startKey == "" {
		return ErrInvalidDateKey
	}
	key, days, err := normalizeSchedule(startKey, durationDays)
	if err != nil {
		return err
	}
	i.StartKey = key
	i.DurationDays = days
	i.UpdatedAt = now.UTC()
	return nil
}

func (i *Item) ClearSchedule(now time.Time) {
	i.StartKey = ""
	i.DurationDays = 0
	i.UpdatedAt = now.UTC()
}

func (i *Item) Reposition(position int, now time.Time) error {
	if position < 0 {
		return ErrInvalidPosition
	}
	i.Position = position
	i.UpdatedAt = now.UTC()
	return nil
}

func (i *Item) Archive(now time.Time) {
	ts := now.UTC()
	i.ArchivedAt = &ts
	i.UpdatedAt = ts
}

func (i *Item) Restore(now time.Time) {
	i.ArchivedAt = nil
	i.UpdatedAt = now.UTC()
}

// normalizeSchedule validates a start key with duration as a pair. An
// empty key means undated and forces duration to zero.
func normalizeSchedule(startKey string, durationDays int) (string, int, error) {
	if startKey == "" {
		return "", 0, nil
	}
	parsed, err := time.Parse(DateKeyLayout, startKey)
	if err != nil {
		return "", 0, ErrInvalidDateKey
	}
	if durationDays < 1 {
		return "", 0, ErrInvalidDuration
	}
	return parsed.Format(DateKeyLayout), durationDays, nil
}
