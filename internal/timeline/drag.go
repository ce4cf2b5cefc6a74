package timeline

import "math"

// dragMode is the gesture state machine. A session is always in
// exactly one mode; delete mode remembers which resize side it came
// from so dragging back out restores the right gesture.
type dragMode int

const (
	dragIdle dragMode = iota
	dragMoving
	dragResizingLeft
	dragResizingRight
	dragCreating
	dragDeleting
)

// GestureType selects the gesture requested at pointer-down.
type GestureType int

const (
	GestureMove GestureType = iota
	GestureResizeLeft
	GestureResizeRight
	GestureCreate
)

// Geometry is live pixel placement for the bar under gesture, derived
// from the frozen zoom so rendering never waits on external state.
type Geometry struct {
	Left  int
	Width int
}

// CommitFunc persists a schedule change. Nil start and duration clear
// the item's dates. The engine never consumes a result; persistence
// failures are the collaborator's concern.
type CommitFunc func(projectID, taskID, subitemID string, startKey *string, durationDays *int)

// BeginInput carries everything a gesture needs at pointer-down.
type BeginInput struct {
	Type      GestureType
	ProjectID string
	TaskID    string
	SubitemID string

	PointerX int
	Mapping  *Mapping
	Zoom     int

	// Existing schedule, used by move and resize gestures.
	StartKey     string
	DurationDays int

	// Column clicked in empty row space, used by create.
	CreateVisualIndex int
}

// session is the transient gesture state. Everything positional reads
// from the snapshot frozen at Begin; later mapping rebuilds or zoom
// changes cannot perturb an in-flight gesture.
type session struct {
	mode       dragMode
	deleteFrom dragMode

	projectID string
	taskID    string
	subitemID string

	mapping *Mapping
	zoom    int

	origVisStart int
	origVisWidth int
	startX       int

	delta    int
	hasMoved bool
	span     int
	geom     Geometry
}

// Engine owns at most one drag session per timeline instance. Begin
// while a session is active is a no-op, so two gestures can never
// race.
type Engine struct {
	cal     *Calendar
	commit  CommitFunc
	settled *Overrides
	sess    *session
}

// NewEngine constructs a new value for this package.
func NewEngine(cal *Calendar, commit CommitFunc, settled *Overrides) *Engine {
	if commit == nil {
		commit = func(string, string, string, *string, *int) {}
	}
	return &Engine{cal: cal, commit: commit, settled: settled}
}

// Active reports whether a gesture is in flight.
func (e *Engine) Active() bool {
	return e.sess != nil
}

// ActiveBar identifies the bar under gesture.
func (e *Engine) ActiveBar() (taskID, subitemID string, ok bool) {
	if e.sess == nil {
		return "", "", false
	}
	return e.sess.taskID, e.sess.subitemID, true
}

// Geometry returns the live placement of the bar under gesture.
func (e *Engine) Geometry() (Geometry, bool) {
	if e.sess == nil {
		return Geometry{}, false
	}
	return e.sess.geom, true
}

// Begin starts a gesture. It reports false and changes nothing when a
// session is already active, when the zoom is unusable, or when the
// gesture's starting column cannot be resolved. A declined gesture is
// a recoverable no-op, not an error.
func (e *Engine) Begin(in BeginInput) bool {
	if e.sess != nil {
		return false
	}
	if in.Mapping == nil || in.Zoom < 1 {
		return false
	}

	s := &session{
		projectID: in.ProjectID,
		taskID:    in.TaskID,
		subitemID: in.SubitemID,
		mapping:   in.Mapping.Clone(),
		zoom:      in.Zoom,
		startX:    in.PointerX,
	}

	switch in.Type {
	case GestureCreate:
		if _, ok := s.mapping.ToCalendarIndex(in.CreateVisualIndex); !ok {
			return false
		}
		s.mode = dragCreating
		s.origVisStart = in.CreateVisualIndex
		s.origVisWidth = 1
		s.span = 1

	case GestureMove, GestureResizeLeft, GestureResizeRight:
		calStart, ok := e.cal.OffsetForKey(in.StartKey)
		if !ok {
			return false
		}
		visStart, ok := s.mapping.ToVisualIndex(calStart)
		if !ok {
			return false
		}
		if in.DurationDays < 1 {
			in.DurationDays = 1
		}
		visEnd, ok := s.mapping.ProbeVisualIndex(calStart + in.DurationDays)
		if !ok || visEnd <= visStart {
			visEnd = visStart + in.DurationDays
		}
		s.origVisStart = visStart
		s.origVisWidth = visEnd - visStart
		switch in.Type {
		case GestureMove:
			s.mode = dragMoving
		case GestureResizeLeft:
			s.mode = dragResizingLeft
		default:
			s.mode = dragResizingRight
		}

	default:
		return false
	}

	s.geom = Geometry{Left: s.origVisStart * s.zoom, Width: s.origVisWidth * s.zoom}
	e.sess = s
	return true
}

// Update advances the gesture to a new pointer position. Unchanged
// column deltas are ignored so repeated motion events inside one
// column never re-commit.
func (e *Engine) Update(pointerX int) {
	s := e.sess
	if s == nil {
		return
	}

	delta := columnDelta(pointerX-s.startX, s.zoom)
	if delta == s.delta {
		return
	}
	s.delta = delta
	if delta != 0 {
		s.hasMoved = true
	}

	switch s.mode {
	case dragCreating:
		s.span = max(1, 1+delta)
		s.geom = Geometry{Left: s.origVisStart * s.zoom, Width: s.span * s.zoom}

	case dragMoving:
		newStart := max(0, s.origVisStart+delta)
		s.geom = Geometry{Left: newStart * s.zoom, Width: s.origVisWidth * s.zoom}
		e.commitVisual(s, newStart, s.origVisWidth)

	case dragResizingRight, dragResizingLeft, dragDeleting:
		side := s.mode
		if side == dragDeleting {
			side = s.deleteFrom
		}

		newStart := s.origVisStart
		newWidth := s.origVisWidth
		if side == dragResizingRight {
			newWidth = s.origVisWidth + delta
		} else {
			origEnd := s.origVisStart + s.origVisWidth
			newStart = max(0, s.origVisStart+delta)
			newWidth = origEnd - newStart
		}

		if newWidth < 1 {
			// Render clamps to one column; nothing is committed until
			// release, which clears the dates.
			s.deleteFrom = side
			s.mode = dragDeleting
			if side == dragResizingLeft {
				newStart = s.origVisStart + s.origVisWidth - 1
			}
			s.geom = Geometry{Left: newStart * s.zoom, Width: s.zoom}
			return
		}
		s.mode = side
		s.geom = Geometry{Left: newStart * s.zoom, Width: newWidth * s.zoom}
		e.commitVisual(s, newStart, newWidth)
	}
}

// End finalizes the gesture. Delete commits cleared dates, create
// commits its accumulated span once, and move and resize have already
// committed continuously. Non-delete gestures with visible movement
// publish a settled override so the bar holds its final position while
// the store catches up.
func (e *Engine) End() {
	s := e.sess
	if s == nil {
		return
	}
	e.sess = nil

	switch s.mode {
	case dragDeleting:
		e.commit(s.projectID, s.taskID, s.subitemID, nil, nil)
		return
	case dragCreating:
		e.commitVisual(s, s.origVisStart, s.span)
	}

	if s.hasMoved && e.settled != nil {
		e.settled.Put(s.taskID, s.subitemID, s.geom)
	}
}

// Cancel aborts the gesture without committing anything; the renderer
// falls back to store-derived geometry.
func (e *Engine) Cancel() {
	e.sess = nil
}

// commitVisual converts a visual placement back through the frozen
// snapshot and invokes the commit callback.
func (e *Engine) commitVisual(s *session, visStart, visWidth int) {
	calStart := s.mapping.ProbeCalendarIndex(visStart)
	calEnd := s.mapping.ProbeCalendarIndex(visStart + visWidth)
	duration := max(1, calEnd-calStart)

	startKey, ok := e.cal.KeyAt(calStart)
	if !ok {
		return
	}
	e.commit(s.projectID, s.taskID, s.subitemID, &startKey, &duration)
}

// columnDelta rounds a pixel delta to whole columns.
func columnDelta(dx, zoom int) int {
	return int(math.Round(float64(dx) / float64(zoom)))
}
