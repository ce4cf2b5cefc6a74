package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidParentID = errors.New("invalid parent id")
	ErrInvalidDateKey  = errors.New("invalid date key")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidColor    = errors.New("invalid color")
)
