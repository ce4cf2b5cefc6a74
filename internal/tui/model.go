// Package tui implements the interactive timeline editor built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/domain"
	"github.com/hylla/tidsplan/internal/timeline"
)

// Service represents service data used by this package.
type Service interface {
	ListProjects(context.Context, bool) ([]domain.Project, error)
	ListItems(context.Context, string, bool) ([]domain.Item, error)
	CreateItem(context.Context, app.CreateItemInput) (domain.Item, error)
	RenameItem(context.Context, string, string) (domain.Item, error)
	SetItemSchedule(context.Context, string, *string, *int) (domain.Item, error)
	DeleteItem(context.Context, string, app.DeleteMode) error
	RestoreItem(context.Context, string) (domain.Item, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddItem
	modeAddSubitem
	modeRenameItem
	modeItemInfo
	modeConfirmAction
)

// layout constants shared by rendering and mouse hit testing.
const (
	labelColumnWidth = 26
	gridTopRows      = 2
	minDayWidth      = 2
	maxDayWidth      = 12
	scrollStepCols   = 7
)

// defaultItemTitle names items created through a drag gesture.
const defaultItemTitle = "New item"

// createSubitemID marks a gesture that creates a new bar instead of
// rescheduling an existing one. The engine treats ids as opaque.
const createSubitemID = "__create__"

// barColors maps item color names to terminal palette colors.
var barColors = map[string]color.Color{
	"":       lipgloss.Color("62"),
	"blue":   lipgloss.Color("33"),
	"green":  lipgloss.Color("35"),
	"yellow": lipgloss.Color("178"),
	"red":    lipgloss.Color("167"),
	"purple": lipgloss.Color("135"),
	"cyan":   lipgloss.Color("37"),
	"gray":   lipgloss.Color("245"),
}

// confirmAction describes a pending confirmation action.
type confirmAction struct {
	Kind  string
	Item  domain.Item
	Mode  app.DeleteMode
	Label string
}

// scheduleCommit is one persistence request produced by the drag engine.
type scheduleCommit struct {
	projectID    string
	parentID     string
	itemID       string
	create       bool
	startKey     *string
	durationDays *int
}

// commitQueue collects engine commits so the update loop can turn them
// into commands. The engine callback runs synchronously inside Update,
// so no locking is needed.
type commitQueue struct {
	pending []scheduleCommit
}

func (q *commitQueue) take() []scheduleCommit {
	out := q.pending
	q.pending = nil
	return out
}

// gridRow is one rendered terminal row of the timeline grid.
type gridRow struct {
	parent   domain.Item
	lane     int
	first    bool
	bars     []timeline.BarLayout
	overflow int
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	defaultDeleteMode app.DeleteMode

	projects        []domain.Project
	selectedProject int
	items           []domain.Item
	selectedItem    int

	showArchived bool
	showWeekends bool
	dayWidth     int
	daysBefore   int
	daysAfter    int
	settleTTL    time.Duration
	scrollCols   int

	now      func() time.Time
	cal      *timeline.Calendar
	mapping  *timeline.Mapping
	engine   *timeline.Engine
	settled  *timeline.Overrides
	commits  *commitQueue
	dragZoom int

	mode           inputMode
	textInput      textinput.Model
	addParentID    string
	editingItemID  string
	infoItemID     string
	pendingConfirm confirmAction

	pendingFocusItemID string

	markdown       markdownRenderer
	writeClipboard func(string) error
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	items           []domain.Item
	err             error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	focusItemID string
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 200

	m := Model{
		svc:               svc,
		status:            "loading...",
		help:              h,
		keys:              newKeyMap(),
		defaultDeleteMode: app.DeleteModeArchive,
		showWeekends:      true,
		dayWidth:          4,
		daysBefore:        90,
		daysAfter:         365,
		settleTTL:         time.Second,
		now:               time.Now,
		textInput:         input,
		writeClipboard:    clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	m.cal = timeline.NewCalendar(m.now(), m.daysBefore, m.daysAfter)
	m.mapping = timeline.NewMapping(m.cal, m.showWeekends)
	m.settled = timeline.NewOverrides(m.settleTTL, nil)
	m.commits = &commitQueue{}
	queue := m.commits
	m.engine = timeline.NewEngine(m.cal, func(projectID, taskID, subitemID string, startKey *string, durationDays *int) {
		if subitemID == createSubitemID {
			queue.pending = append(queue.pending, scheduleCommit{
				projectID:    projectID,
				parentID:     taskID,
				create:       true,
				startKey:     startKey,
				durationDays: durationDays,
			})
			return
		}
		target := taskID
		if subitemID != "" {
			target = subitemID
		}
		queue.pending = append(queue.pending, scheduleCommit{
			projectID:    projectID,
			itemID:       target,
			startKey:     startKey,
			durationDays: durationDays,
		})
	}, m.settled)
	m.dragZoom = m.dayWidth

	if todayVis, ok := m.mapping.ToVisualIndex(m.daysBefore); ok {
		m.scrollCols = max(0, todayVis-2)
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.selectedProject = msg.selectedProject
		m.items = msg.items
		if m.pendingFocusItemID != "" {
			for idx, item := range m.items {
				if item.ID == m.pendingFocusItemID {
					m.selectedItem = idx
					break
				}
			}
			m.pendingFocusItemID = ""
		}
		m.selectedItem = clamp(m.selectedItem, 0, len(m.items)-1)
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusItemID != "" {
			m.pendingFocusItemID = msg.focusItemID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	projects, err := m.svc.ListProjects(context.Background(), false)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{projects: projects}
	}
	projectIdx := clamp(m.selectedProject, 0, len(projects)-1)
	items, err := m.svc.ListItems(context.Background(), projects[projectIdx].ID, m.showArchived)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{
		projects:        projects,
		selectedProject: projectIdx,
		items:           items,
	}
}

// drainCommits applies queued engine commits. Schedule updates run
// synchronously inside the update loop so commits from successive
// motion events reach the store in gesture order; the command runtime
// gives concurrent commands no ordering guarantee. A create returns a
// command because the reload needs the new item's identity.
func (m *Model) drainCommits() tea.Cmd {
	pending := m.commits.take()
	if len(pending) == 0 {
		return nil
	}
	ctx := context.Background()
	for _, c := range pending {
		if c.create {
			svc := m.svc
			in := app.CreateItemInput{
				ProjectID: c.projectID,
				ParentID:  c.parentID,
				Title:     defaultItemTitle,
			}
			if c.startKey != nil && c.durationDays != nil {
				in.StartKey = *c.startKey
				in.DurationDays = *c.durationDays
			}
			return func() tea.Msg {
				created, err := svc.CreateItem(ctx, in)
				if err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{reload: true, status: "item created", focusItemID: created.ID}
			}
		}
		if _, err := m.svc.SetItemSchedule(ctx, c.itemID, c.startKey, c.durationDays); err != nil {
			m.err = err
			return nil
		}
	}
	m.err = nil
	return m.loadData
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		if m.engine.Active() {
			m.engine.Cancel()
			m.status = "drag canceled"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		if m.selectedItem < len(m.items)-1 {
			m.selectedItem++
		}
		return m, nil

	case key.Matches(msg, m.keys.scrollLeft):
		m.scrollCols = max(0, m.scrollCols-scrollStepCols)
		return m, nil

	case key.Matches(msg, m.keys.scrollRight):
		m.scrollCols = clamp(m.scrollCols+scrollStepCols, 0, max(0, m.mapping.VisibleCount()-1))
		return m, nil

	case key.Matches(msg, m.keys.addItem):
		m.mode = modeAddItem
		m.addParentID = ""
		m.textInput.SetValue("")
		m.textInput.Placeholder = "item title"
		return m, m.textInput.Focus()

	case key.Matches(msg, m.keys.addSubitem):
		parent, ok := m.selectedItemRef()
		if !ok {
			m.status = "no item selected"
			return m, nil
		}
		if parent.IsSubitem() {
			if p, found := m.itemByID(parent.ParentID); found {
				parent = p
			}
		}
		m.mode = modeAddSubitem
		m.addParentID = parent.ID
		m.textInput.SetValue("")
		m.textInput.Placeholder = "subitem title for " + truncate(parent.Title, 24)
		return m, m.textInput.Focus()

	case key.Matches(msg, m.keys.renameItem):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		m.mode = modeRenameItem
		m.editingItemID = item.ID
		m.textInput.SetValue(item.Title)
		m.textInput.Placeholder = "item title"
		return m, m.textInput.Focus()

	case key.Matches(msg, m.keys.itemInfo):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		m.mode = modeItemInfo
		m.infoItemID = item.ID
		return m, nil

	case key.Matches(msg, m.keys.deleteItem):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		label := "archive"
		if m.defaultDeleteMode == app.DeleteModeHard {
			label = "hard delete"
		}
		m.mode = modeConfirmAction
		m.pendingConfirm = confirmAction{Kind: "delete", Item: item, Mode: m.defaultDeleteMode, Label: label}
		return m, nil

	case key.Matches(msg, m.keys.hardDelete):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmAction
		m.pendingConfirm = confirmAction{Kind: "delete", Item: item, Mode: app.DeleteModeHard, Label: "hard delete"}
		return m, nil

	case key.Matches(msg, m.keys.restoreItem):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		svc := m.svc
		return m, func() tea.Msg {
			if _, err := svc.RestoreItem(context.Background(), item.ID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{reload: true, status: "item restored"}
		}

	case key.Matches(msg, m.keys.clearSchedule):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		if !item.Dated() {
			m.status = "item has no dates"
			return m, nil
		}
		svc := m.svc
		return m, func() tea.Msg {
			if _, err := svc.SetItemSchedule(context.Background(), item.ID, nil, nil); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{reload: true, status: "dates cleared"}
		}

	case key.Matches(msg, m.keys.yank):
		item, ok := m.selectedItemRef()
		if !ok {
			return m, nil
		}
		text := item.Title
		if item.Dated() {
			text = fmt.Sprintf("%s %s +%dd", item.Title, item.StartKey, item.DurationDays)
		}
		if err := m.writeClipboard(text); err != nil {
			m.status = "yank failed: " + err.Error()
			return m, nil
		}
		m.status = "yanked: " + truncate(text, 40)
		return m, nil

	case key.Matches(msg, m.keys.toggleWeekends):
		m.showWeekends = !m.showWeekends
		// The live mapping rebuilds; an active gesture keeps its frozen snapshot.
		m.mapping = timeline.NewMapping(m.cal, m.showWeekends)
		m.scrollCols = clamp(m.scrollCols, 0, max(0, m.mapping.VisibleCount()-1))
		if m.showWeekends {
			m.status = "weekends shown"
		} else {
			m.status = "weekends hidden"
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomIn):
		m.dayWidth = min(maxDayWidth, m.dayWidth+1)
		m.status = fmt.Sprintf("zoom %d", m.dayWidth)
		return m, nil

	case key.Matches(msg, m.keys.zoomOut):
		m.dayWidth = max(minDayWidth, m.dayWidth-1)
		m.status = fmt.Sprintf("zoom %d", m.dayWidth)
		return m, nil

	case key.Matches(msg, m.keys.toggleArchived):
		m.showArchived = !m.showArchived
		return m, m.loadData
	}
	return m, nil
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeItemInfo:
		switch msg.String() {
		case "esc", "enter", "q", "i":
			m.mode = modeNone
			m.infoItemID = ""
		}
		return m, nil

	case modeConfirmAction:
		switch msg.String() {
		case "y", "enter":
			action := m.pendingConfirm
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
			svc := m.svc
			return m, func() tea.Msg {
				if err := svc.DeleteItem(context.Background(), action.Item.ID, action.Mode); err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{reload: true, status: action.Label + "d: " + truncate(action.Item.Title, 32)}
			}
		case "n", "esc":
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
		}
		return m, nil

	case modeAddItem, modeAddSubitem, modeRenameItem:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.editingItemID = ""
			m.addParentID = ""
			m.textInput.Blur()
			return m, nil
		case "enter":
			return m.submitInputMode()
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submitInputMode submits the active text input.
func (m Model) submitInputMode() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.textInput.Value())
	if title == "" {
		m.status = "title required"
		return m, nil
	}

	mode := m.mode
	parentID := m.addParentID
	editingID := m.editingItemID
	m.mode = modeNone
	m.addParentID = ""
	m.editingItemID = ""
	m.textInput.Blur()

	projectID, ok := m.currentProjectID()
	if !ok {
		return m, nil
	}
	svc := m.svc

	switch mode {
	case modeAddItem, modeAddSubitem:
		return m, func() tea.Msg {
			created, err := svc.CreateItem(context.Background(), app.CreateItemInput{
				ProjectID: projectID,
				ParentID:  parentID,
				Title:     title,
			})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{reload: true, status: "item created", focusItemID: created.ID}
		}
	case modeRenameItem:
		return m, func() tea.Msg {
			if _, err := svc.RenameItem(context.Background(), editingID, title); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{reload: true, status: "item renamed"}
		}
	}
	return m, nil
}

// handleMouseClick begins a drag gesture or moves the selection.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	if msg.Button != tea.MouseLeft {
		return m, nil
	}

	projectID, ok := m.currentProjectID()
	if !ok {
		return m, nil
	}

	rows := m.buildGrid()
	y := msg.Y - gridTopRows
	if y < 0 {
		return m, nil
	}
	gridLeft := labelColumnWidth + 1

	if y >= len(rows) {
		// Empty space below all rows creates a new top-level item.
		if msg.X < gridLeft {
			return m, nil
		}
		if m.engine.Begin(timeline.BeginInput{
			Type:              timeline.GestureCreate,
			ProjectID:         projectID,
			SubitemID:         createSubitemID,
			PointerX:          msg.X,
			Mapping:           m.mapping,
			Zoom:              m.dayWidth,
			CreateVisualIndex: m.visualColAt(msg.X),
		}) {
			m.dragZoom = m.dayWidth
		}
		return m, nil
	}

	row := rows[y]
	m.selectItemByID(row.parent.ID)
	if msg.X < gridLeft {
		return m, nil
	}
	vis := m.visualColAt(msg.X)

	for _, bar := range row.bars {
		visStart, widthCols, spanOK := m.barVisualSpan(bar)
		if !spanOK || vis < visStart || vis >= visStart+widthCols {
			continue
		}
		item, found := m.itemForBar(bar)
		if !found {
			continue
		}
		m.selectItemByID(item.ID)

		gesture := timeline.GestureMove
		if widthCols > 1 && vis == visStart {
			gesture = timeline.GestureResizeLeft
		} else if widthCols > 1 && vis == visStart+widthCols-1 {
			gesture = timeline.GestureResizeRight
		}
		if m.engine.Begin(timeline.BeginInput{
			Type:         gesture,
			ProjectID:    item.ProjectID,
			TaskID:       bar.TaskID,
			SubitemID:    bar.SubitemID,
			PointerX:     msg.X,
			Mapping:      m.mapping,
			Zoom:         m.dayWidth,
			StartKey:     item.StartKey,
			DurationDays: item.DurationDays,
		}) {
			m.dragZoom = m.dayWidth
		}
		return m, nil
	}

	// Empty grid space inside a row: schedule an undated parent, or
	// start a new subitem bar under a dated one.
	in := timeline.BeginInput{
		Type:              timeline.GestureCreate,
		ProjectID:         projectID,
		TaskID:            row.parent.ID,
		PointerX:          msg.X,
		Mapping:           m.mapping,
		Zoom:              m.dayWidth,
		CreateVisualIndex: m.visualColAt(msg.X),
	}
	if row.parent.Dated() {
		in.SubitemID = createSubitemID
	}
	if m.engine.Begin(in) {
		m.dragZoom = m.dayWidth
	}
	return m, nil
}

// handleMouseMotion advances an active drag gesture.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.engine.Active() {
		return m, nil
	}
	m.engine.Update(msg.Mouse().X)
	return m, m.drainCommits()
}

// handleMouseRelease finalizes an active drag gesture.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.engine.Active() {
		return m, nil
	}
	m.engine.End()
	return m, m.drainCommits()
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case tea.MouseWheelDown:
		if m.selectedItem < len(m.items)-1 {
			m.selectedItem++
		}
	case tea.MouseWheelLeft:
		m.scrollCols = max(0, m.scrollCols-scrollStepCols)
	case tea.MouseWheelRight:
		m.scrollCols = clamp(m.scrollCols+scrollStepCols, 0, max(0, m.mapping.VisibleCount()-1))
	}
	return m, nil
}

// visualColAt converts a screen x position into a visual column index.
func (m Model) visualColAt(x int) int {
	gridLeft := labelColumnWidth + 1
	return m.scrollCols + (x-gridLeft)/max(1, m.dayWidth)
}

// buildGrid lays out every parent row with its lanes for rendering and
// mouse hit testing. Both consumers share this so clicks always agree
// with what was drawn.
func (m Model) buildGrid() []gridRow {
	rows := make([]gridRow, 0, len(m.items))
	for _, parent := range m.items {
		if parent.IsSubitem() {
			continue
		}
		laneItems := []timeline.LaneItem{{
			TaskID:       parent.ID,
			StartKey:     parent.StartKey,
			DurationDays: parent.DurationDays,
			Color:        parent.Color,
			Label:        parent.Title,
		}}
		for _, sub := range m.items {
			if sub.ParentID != parent.ID {
				continue
			}
			laneItems = append(laneItems, timeline.LaneItem{
				TaskID:       parent.ID,
				SubitemID:    sub.ID,
				StartKey:     sub.StartKey,
				DurationDays: sub.DurationDays,
				Color:        sub.Color,
				Label:        sub.Title,
			})
		}

		layout := timeline.LayoutRow(laneItems, m.cal, m.mapping)
		lanes := clamp(layout.Lanes, 1, timeline.MaxVisibleLanes)
		for lane := 0; lane < lanes; lane++ {
			row := gridRow{parent: parent, lane: lane, first: lane == 0}
			for _, bar := range layout.Bars {
				if bar.Hidden || bar.Lane != lane {
					continue
				}
				row.bars = append(row.bars, bar)
			}
			if lane == lanes-1 {
				row.overflow = layout.Overflow
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// barVisualSpan resolves the rendered placement of one bar. An active
// gesture wins, then a fresh settled override, then the store-derived
// layout.
func (m Model) barVisualSpan(bar timeline.BarLayout) (int, int, bool) {
	zoom := max(1, m.dragZoom)
	if m.engine.Active() {
		if taskID, subitemID, ok := m.engine.ActiveBar(); ok && taskID == bar.TaskID && subitemID == bar.SubitemID {
			if geom, ok := m.engine.Geometry(); ok {
				return geom.Left / zoom, max(1, geom.Width/zoom), true
			}
		}
	}
	if geom, ok := m.settled.Get(bar.TaskID, bar.SubitemID); ok {
		return geom.Left / zoom, max(1, geom.Width/zoom), true
	}
	if bar.VisualEnd <= bar.VisualStart {
		return 0, 0, false
	}
	return bar.VisualStart, bar.Width(), true
}

// activeCreateSpan reports the phantom bar of an in-flight create gesture.
func (m Model) activeCreateSpan(parentID string) (int, int, bool) {
	if !m.engine.Active() {
		return 0, 0, false
	}
	taskID, subitemID, ok := m.engine.ActiveBar()
	if !ok || subitemID != createSubitemID || taskID != parentID {
		return 0, 0, false
	}
	geom, ok := m.engine.Geometry()
	if !ok {
		return 0, 0, false
	}
	zoom := max(1, m.dragZoom)
	return geom.Left / zoom, max(1, geom.Width/zoom), true
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready || len(m.projects) == 0 {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	project := m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)]
	header := titleStyle.Render("tidsplan") + "  " + project.Name
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	if !m.showWeekends {
		header += statusStyle.Render("  weekends hidden")
	}
	if m.showArchived {
		header += statusStyle.Render("  showing archived")
	}
	header += statusStyle.Render(fmt.Sprintf("  zoom %d", m.dayWidth))

	visibleCols := m.visibleColumnCount()
	lines := []string{header, m.renderDayHeader(visibleCols, accent, muted, dim)}
	rows := m.buildGrid()
	for _, row := range rows {
		lines = append(lines, m.renderGridRow(row, visibleCols, accent, muted, dim))
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	statusLine := statusStyle.Render(m.status)
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	content := strings.Join(lines, "\n")
	if m.height > 0 {
		footerHeight := lipgloss.Height(statusLine) + lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-footerHeight))
	}
	fullContent := content + "\n" + statusLine + "\n" + helpLine

	if overlay := m.renderModeOverlay(accent, muted, dim); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// visibleColumnCount reports how many day columns fit on screen.
func (m Model) visibleColumnCount() int {
	gridLeft := labelColumnWidth + 1
	if m.width <= gridLeft {
		return 1
	}
	return max(1, (m.width-gridLeft)/max(1, m.dayWidth))
}

// renderDayHeader renders the day-of-month ruler above the grid.
func (m Model) renderDayHeader(visibleCols int, accent, muted, dim color.Color) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelColumnWidth+1))
	headStyle := lipgloss.NewStyle().Foreground(muted)
	weekendStyle := lipgloss.NewStyle().Foreground(dim)
	todayStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)

	for c := m.scrollCols; c < m.scrollCols+visibleCols; c++ {
		cell := strings.Repeat(" ", m.dayWidth)
		style := headStyle
		if calIdx, ok := m.mapping.ToCalendarIndex(c); ok {
			if day, found := m.cal.DayAt(calIdx); found {
				label := day.Label()
				if len(label) > m.dayWidth {
					label = label[:m.dayWidth]
				}
				cell = label + strings.Repeat(" ", m.dayWidth-len(label))
				if day.Weekend {
					style = weekendStyle
				}
				if day.RelativeIndex == 0 {
					style = todayStyle
				}
			}
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

// renderGridRow renders one terminal row of the timeline grid.
func (m Model) renderGridRow(row gridRow, visibleCols int, accent, muted, dim color.Color) string {
	selected := false
	if item, ok := m.selectedItemRef(); ok {
		if item.ID == row.parent.ID && row.first {
			selected = true
		}
		if item.IsSubitem() && item.ParentID == row.parent.ID {
			for _, bar := range row.bars {
				if bar.SubitemID == item.ID {
					selected = true
				}
			}
		}
	}

	label := strings.Repeat(" ", labelColumnWidth)
	if row.first {
		text := truncate(row.parent.Title, labelColumnWidth-2)
		if row.parent.ArchivedAt != nil {
			text += " ⊘"
		}
		label = text + strings.Repeat(" ", max(0, labelColumnWidth-lipgloss.Width(text)))
	}
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	if selected {
		labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	}

	type cellState struct {
		text  rune
		color color.Color
		isBar bool
	}
	cells := make([][]cellState, visibleCols)
	for c := range cells {
		col := make([]cellState, m.dayWidth)
		for i := range col {
			col[i] = cellState{text: ' '}
		}
		if calIdx, ok := m.mapping.ToCalendarIndex(m.scrollCols + c); ok {
			if day, found := m.cal.DayAt(calIdx); found && day.Weekend {
				col[0].text = '·'
			}
		}
		cells[c] = col
	}

	paint := func(visStart, widthCols int, color color.Color, text string) {
		runes := []rune(text)
		pos := 0
		for c := visStart; c < visStart+widthCols; c++ {
			screenCol := c - m.scrollCols
			if screenCol < 0 || screenCol >= visibleCols {
				pos += m.dayWidth
				continue
			}
			for i := 0; i < m.dayWidth; i++ {
				ch := ' '
				if pos < len(runes) {
					ch = runes[pos]
				}
				cells[screenCol][i] = cellState{text: ch, color: color, isBar: true}
				pos++
			}
		}
	}

	for _, bar := range row.bars {
		visStart, widthCols, ok := m.barVisualSpan(bar)
		if !ok {
			continue
		}
		color, ok := barColors[bar.Color]
		if !ok {
			color = barColors[""]
		}
		text := ""
		if bar.SubitemID == "" {
			text = " " + truncate(bar.Label, widthCols*m.dayWidth-1)
		}
		paint(visStart, widthCols, color, text)
	}
	if visStart, widthCols, ok := m.activeCreateSpan(row.parent.ID); ok && row.first {
		paint(visStart, widthCols, barColors[""], "")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(label))
	b.WriteString(" ")
	weekendStyle := lipgloss.NewStyle().Foreground(dim)
	for _, col := range cells {
		run := make([]rune, 0, m.dayWidth)
		barCell := col[0].isBar
		for _, cs := range col {
			run = append(run, cs.text)
		}
		if barCell {
			style := lipgloss.NewStyle().Background(col[0].color).Foreground(lipgloss.Color("252"))
			b.WriteString(style.Render(string(run)))
		} else {
			b.WriteString(weekendStyle.Render(string(run)))
		}
	}
	if row.overflow > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf(" +%d more", row.overflow)))
	}
	return b.String()
}

// renderModeOverlay renders the modal overlay for the current mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeAddItem:
		return boxStyle.Render(titleStyle.Render("New item") + "\n\n" + m.textInput.View() + "\n\n" + hintStyle.Render("enter save • esc cancel"))
	case modeAddSubitem:
		return boxStyle.Render(titleStyle.Render("New subitem") + "\n\n" + m.textInput.View() + "\n\n" + hintStyle.Render("enter save • esc cancel"))
	case modeRenameItem:
		return boxStyle.Render(titleStyle.Render("Rename item") + "\n\n" + m.textInput.View() + "\n\n" + hintStyle.Render("enter save • esc cancel"))
	case modeConfirmAction:
		prompt := fmt.Sprintf("%s %q?", m.pendingConfirm.Label, truncate(m.pendingConfirm.Item.Title, 32))
		return boxStyle.Render(titleStyle.Render("Confirm") + "\n\n" + prompt + "\n\n" + hintStyle.Render("y confirm • n cancel"))
	case modeItemInfo:
		item, ok := m.itemByID(m.infoItemID)
		if !ok {
			return ""
		}
		schedule := "unscheduled"
		if item.Dated() {
			schedule = fmt.Sprintf("%s  +%dd", item.StartKey, item.DurationDays)
		}
		body := titleStyle.Render(item.Title) + "\n" + hintStyle.Render(schedule)
		if item.Color != "" {
			body += hintStyle.Render("  " + item.Color)
		}
		if notes := m.markdown.render(item.Notes, min(72, m.width-12)); notes != "" {
			body += "\n\n" + notes
		}
		body += "\n\n" + hintStyle.Render("esc close")
		return boxStyle.Render(body)
	}
	return ""
}

// modeLabel reports a short header label for the current mode.
func (m Model) modeLabel() string {
	if m.engine.Active() {
		return "dragging"
	}
	switch m.mode {
	case modeAddItem:
		return "add item"
	case modeAddSubitem:
		return "add subitem"
	case modeRenameItem:
		return "rename"
	case modeItemInfo:
		return "info"
	case modeConfirmAction:
		return "confirm"
	default:
		return "timeline"
	}
}

// currentProjectID reports the active project.
func (m Model) currentProjectID() (string, bool) {
	if len(m.projects) == 0 {
		return "", false
	}
	return m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)].ID, true
}

// selectedItemRef reports the currently selected item.
func (m Model) selectedItemRef() (domain.Item, bool) {
	if len(m.items) == 0 {
		return domain.Item{}, false
	}
	return m.items[clamp(m.selectedItem, 0, len(m.items)-1)], true
}

// itemByID looks up one loaded item.
func (m Model) itemByID(id string) (domain.Item, bool) {
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.Item{}, false
}

// itemForBar resolves the item behind one layout bar.
func (m Model) itemForBar(bar timeline.BarLayout) (domain.Item, bool) {
	id := bar.TaskID
	if bar.SubitemID != "" {
		id = bar.SubitemID
	}
	return m.itemByID(id)
}

// selectItemByID moves the selection to the given item when loaded.
func (m *Model) selectItemByID(id string) {
	for idx, item := range m.items {
		if item.ID == id {
			m.selectedItem = idx
			return
		}
	}
}

// clamp constrains v into the inclusive range.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(rs[:maxLen])
	}
	return string(rs[:maxLen-1]) + "…"
}
