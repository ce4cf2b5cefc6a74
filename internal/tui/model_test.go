package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/domain"
)

type scheduleCall struct {
	itemID       string
	startKey     *string
	durationDays *int
}

type fakeService struct {
	projects []domain.Project
	items    map[string][]domain.Item

	setCalls []scheduleCall
	created  []app.CreateItemInput
	deleted  []string
	restored []string
	renamed  map[string]string
	nextID   int
	err      error
}

func newFakeService(projects []domain.Project, items []domain.Item) *fakeService {
	byProject := map[string][]domain.Item{}
	for _, item := range items {
		byProject[item.ProjectID] = append(byProject[item.ProjectID], item)
	}
	return &fakeService{
		projects: projects,
		items:    byProject,
		renamed:  map[string]string{},
	}
}

func (f *fakeService) ListProjects(context.Context, bool) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

func (f *fakeService) ListItems(_ context.Context, projectID string, includeArchived bool) ([]domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := f.items[projectID]
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if !includeArchived && item.ArchivedAt != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeService) CreateItem(_ context.Context, in app.CreateItemInput) (domain.Item, error) {
	f.created = append(f.created, in)
	f.nextID++
	item, err := domain.NewItem(domain.ItemInput{
		ID:           fmt.Sprintf("new-%d", f.nextID),
		ProjectID:    in.ProjectID,
		ParentID:     in.ParentID,
		Position:     len(f.items[in.ProjectID]),
		Title:        in.Title,
		Notes:        in.Notes,
		Color:        in.Color,
		StartKey:     in.StartKey,
		DurationDays: in.DurationDays,
	}, time.Now().UTC())
	if err != nil {
		return domain.Item{}, err
	}
	f.items[in.ProjectID] = append(f.items[in.ProjectID], item)
	return item, nil
}

func (f *fakeService) RenameItem(_ context.Context, itemID, title string) (domain.Item, error) {
	f.renamed[itemID] = title
	for projectID := range f.items {
		for idx := range f.items[projectID] {
			if f.items[projectID][idx].ID != itemID {
				continue
			}
			if err := f.items[projectID][idx].Rename(title, time.Now().UTC()); err != nil {
				return domain.Item{}, err
			}
			return f.items[projectID][idx], nil
		}
	}
	return domain.Item{}, app.ErrNotFound
}

func (f *fakeService) SetItemSchedule(_ context.Context, itemID string, startKey *string, durationDays *int) (domain.Item, error) {
	f.setCalls = append(f.setCalls, scheduleCall{itemID: itemID, startKey: startKey, durationDays: durationDays})
	for projectID := range f.items {
		for idx := range f.items[projectID] {
			if f.items[projectID][idx].ID != itemID {
				continue
			}
			if startKey == nil && durationDays == nil {
				f.items[projectID][idx].ClearSchedule(time.Now().UTC())
				return f.items[projectID][idx], nil
			}
			if startKey == nil || durationDays == nil {
				return domain.Item{}, domain.ErrInvalidDateKey
			}
			if err := f.items[projectID][idx].Schedule(*startKey, *durationDays, time.Now().UTC()); err != nil {
				return domain.Item{}, err
			}
			return f.items[projectID][idx], nil
		}
	}
	return domain.Item{}, app.ErrNotFound
}

func (f *fakeService) DeleteItem(_ context.Context, itemID string, _ app.DeleteMode) error {
	f.deleted = append(f.deleted, itemID)
	return nil
}

func (f *fakeService) RestoreItem(_ context.Context, itemID string) (domain.Item, error) {
	f.restored = append(f.restored, itemID)
	return domain.Item{}, nil
}

func (f *fakeService) lastSet(t *testing.T) scheduleCall {
	t.Helper()
	if len(f.setCalls) == 0 {
		t.Fatal("expected at least one schedule call")
	}
	return f.setCalls[len(f.setCalls)-1]
}

// monday anchors every test calendar so weekend columns land on known
// visual indices: offsets 5 and 6 are the first Saturday and Sunday.
var testMonday = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func testItem(t *testing.T, id, projectID, parentID, title, startKey string, durationDays int) domain.Item {
	t.Helper()
	item, err := domain.NewItem(domain.ItemInput{
		ID:           id,
		ProjectID:    projectID,
		ParentID:     parentID,
		Title:        title,
		StartKey:     startKey,
		DurationDays: durationDays,
	}, testMonday)
	if err != nil {
		t.Fatalf("NewItem(%s) error = %v", id, err)
	}
	return item
}

func newTestModel(svc Service, extra ...Option) Model {
	opts := []Option{
		WithNow(func() time.Time { return testMonday }),
		WithTimelineConfig(TimelineConfig{
			ShowWeekends: true,
			DayWidth:     4,
			DaysBefore:   0,
			DaysAfter:    60,
			SettleTTL:    time.Second,
		}),
	}
	opts = append(opts, extra...)
	return NewModel(svc, opts...)
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// barX converts a visual column on the default test grid into a screen
// x position.
func barX(visCol int) int {
	return labelColumnWidth + 1 + visCol*4
}

func TestModelLoadsTimeline(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
		testItem(t, "t2", p.ID, "", "Backlog", "", 0),
	})
	m := loadReadyModel(t, NewModel(svc,
		WithNow(func() time.Time { return testMonday }),
	))

	if len(m.items) != 2 {
		t.Fatalf("expected 2 items loaded, got %d", len(m.items))
	}
	v := m.View()
	if v.Content == nil || v.MouseMode != tea.MouseModeCellMotion || !v.AltScreen {
		t.Fatal("expected rendered view with cell motion mouse mode")
	}

	rows := m.buildGrid()
	if len(rows) != 2 {
		t.Fatalf("expected one grid row per parent, got %d", len(rows))
	}
	if rows[0].parent.Title != "Design" || rows[1].parent.Title != "Backlog" {
		t.Fatalf("unexpected row order: %q, %q", rows[0].parent.Title, rows[1].parent.Title)
	}
	if len(rows[0].bars) != 1 || rows[0].bars[0].Width() != 3 {
		t.Fatalf("expected one 3-wide bar on the dated row, got %+v", rows[0].bars)
	}
	if len(rows[1].bars) != 0 {
		t.Fatal("expected no bars on the undated row")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := NewModel(newFakeService(nil, nil))
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

func TestMouseDragMoveReschedules(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	// Interior column of the 3-wide bar starts a move gesture.
	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows, Button: tea.MouseLeft})
	if !m.engine.Active() {
		t.Fatal("expected active gesture after click on bar")
	}

	// Two columns to the right commits during motion.
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(1) + 8})
	call := svc.lastSet(t)
	if call.itemID != "t1" {
		t.Fatalf("schedule call item = %q, want t1", call.itemID)
	}
	if call.startKey == nil || *call.startKey != "2026-08-26" {
		t.Fatalf("schedule call start = %v, want 2026-08-26", call.startKey)
	}
	if call.durationDays == nil || *call.durationDays != 3 {
		t.Fatalf("schedule call duration = %v, want 3", call.durationDays)
	}

	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(1) + 8, Button: tea.MouseLeft})
	if m.engine.Active() {
		t.Fatal("expected gesture to end on release")
	}
	if m.items[0].StartKey != "2026-08-26" {
		t.Fatalf("expected reload to show moved bar, got start %q", m.items[0].StartKey)
	}
}

func TestDragCommitsPersistInMotionOrder(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows, Button: tea.MouseLeft})

	// Each motion event persists before Update returns, without running
	// any returned command, so successive commits can never land in the
	// store out of gesture order.
	updated, _ := m.Update(tea.MouseMotionMsg{X: barX(1) + 4})
	m = updated.(Model)
	if len(svc.setCalls) != 1 {
		t.Fatalf("expected one schedule call inside Update, got %d", len(svc.setCalls))
	}
	updated, _ = m.Update(tea.MouseMotionMsg{X: barX(1) + 8})
	m = updated.(Model)
	if len(svc.setCalls) != 2 {
		t.Fatalf("expected two schedule calls inside Update, got %d", len(svc.setCalls))
	}

	first, second := svc.setCalls[0], svc.setCalls[1]
	if *first.startKey != "2026-08-25" || *second.startKey != "2026-08-26" {
		t.Fatalf("commit order = %q then %q, want 2026-08-25 then 2026-08-26", *first.startKey, *second.startKey)
	}
	if svc.items[p.ID][0].StartKey != "2026-08-26" {
		t.Fatalf("persisted start = %q, want the gesture's final position", svc.items[p.ID][0].StartKey)
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows, Button: tea.MouseLeft})
	if !m.engine.Active() {
		t.Fatal("expected active gesture")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.engine.Active() {
		t.Fatal("expected escape to cancel the gesture")
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(1) + 8})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(1) + 8, Button: tea.MouseLeft})
	if len(svc.setCalls) != 0 {
		t.Fatalf("expected no schedule calls after cancel, got %d", len(svc.setCalls))
	}
}

func TestWeekendToggleKeepsActiveGestureFrozen(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows, Button: tea.MouseLeft})
	m = applyMsg(t, m, keyRune('w'))
	if m.showWeekends {
		t.Fatal("expected weekends hidden after toggle")
	}

	// The gesture still resolves columns against the snapshot taken at
	// pointer-down, where weekends were visible.
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(1) + 8})
	call := svc.lastSet(t)
	if call.startKey == nil || *call.startKey != "2026-08-26" {
		t.Fatalf("schedule call start = %v, want 2026-08-26 from frozen mapping", call.startKey)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(1) + 8, Button: tea.MouseLeft})
	if m.engine.Active() {
		t.Fatal("expected gesture to end on release")
	}
}

func TestResizeRightIntoDeleteClearsDates(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	// Rightmost column starts a right resize; dragging three columns
	// left collapses the bar below one day.
	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(2), Y: gridTopRows, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(2) - 12})
	if len(svc.setCalls) != 0 {
		t.Fatalf("expected no commits while in delete mode, got %d", len(svc.setCalls))
	}

	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(2) - 12, Button: tea.MouseLeft})
	call := svc.lastSet(t)
	if call.itemID != "t1" || call.startKey != nil || call.durationDays != nil {
		t.Fatalf("expected clearing commit on release, got %+v", call)
	}
	if m.items[0].Dated() {
		t.Fatal("expected item undated after reload")
	}
}

func TestCreateDragSchedulesUndatedParent(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
		testItem(t, "t2", p.ID, "", "Backlog", "", 0),
	})
	m := loadReadyModel(t, newTestModel(svc))

	// Click-release without motion on the undated row schedules a
	// single day at the clicked column.
	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(5), Y: gridTopRows + 1, Button: tea.MouseLeft})
	if !m.engine.Active() {
		t.Fatal("expected create gesture on empty row space")
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(5), Button: tea.MouseLeft})

	call := svc.lastSet(t)
	if call.itemID != "t2" {
		t.Fatalf("schedule call item = %q, want t2", call.itemID)
	}
	if call.startKey == nil || *call.startKey != "2026-08-29" {
		t.Fatalf("schedule call start = %v, want 2026-08-29", call.startKey)
	}
	if call.durationDays == nil || *call.durationDays != 1 {
		t.Fatalf("schedule call duration = %v, want 1", call.durationDays)
	}
}

func TestCreateDragBelowRowsCreatesItem(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
		testItem(t, "t2", p.ID, "", "Backlog", "", 0),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows + 4, Button: tea.MouseLeft})
	if !m.engine.Active() {
		t.Fatal("expected create gesture below all rows")
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(1) + 8})
	if len(svc.created) != 0 {
		t.Fatal("create must not commit before release")
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(1) + 8, Button: tea.MouseLeft})

	if len(svc.created) != 1 {
		t.Fatalf("expected one created item, got %d", len(svc.created))
	}
	in := svc.created[0]
	if in.ProjectID != "p1" || in.ParentID != "" {
		t.Fatalf("unexpected create target %+v", in)
	}
	if in.Title != defaultItemTitle {
		t.Fatalf("create title = %q, want %q", in.Title, defaultItemTitle)
	}
	if in.StartKey != "2026-08-25" || in.DurationDays != 3 {
		t.Fatalf("create schedule = %q +%dd, want 2026-08-25 +3d", in.StartKey, in.DurationDays)
	}
	if len(m.items) != 3 {
		t.Fatalf("expected reload to include the new item, got %d items", len(m.items))
	}
}

func TestClearScheduleKey(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, keyRune('x'))
	call := svc.lastSet(t)
	if call.itemID != "t1" || call.startKey != nil || call.durationDays != nil {
		t.Fatalf("expected clearing call for t1, got %+v", call)
	}
	if m.items[0].Dated() {
		t.Fatal("expected item undated after clear")
	}
}

func TestYankWritesClipboard(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	var copied string
	m := loadReadyModel(t, newTestModel(svc, WithClipboard(func(text string) error {
		copied = text
		return nil
	})))

	m = applyMsg(t, m, keyRune('y'))
	if copied != "Design 2026-08-24 +3d" {
		t.Fatalf("clipboard = %q", copied)
	}
	if !strings.Contains(m.status, "yanked") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestConfiguredKeyOverrideRebindsYank(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	var copied string
	m := loadReadyModel(t, newTestModel(svc,
		WithKeys(KeyConfig{Yank: "c"}),
		WithClipboard(func(text string) error {
			copied = text
			return nil
		}),
	))

	m = applyMsg(t, m, keyRune('y'))
	if copied != "" {
		t.Fatalf("default key still bound after override, copied %q", copied)
	}
	m = applyMsg(t, m, keyRune('c'))
	if copied != "Design 2026-08-24 +3d" {
		t.Fatalf("clipboard = %q", copied)
	}
}

func TestAddItemFlow(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeAddItem {
		t.Fatalf("expected add item mode, got %v", m.mode)
	}
	for _, r := range "Plan" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone {
		t.Fatal("expected input mode to close on submit")
	}
	if len(svc.created) != 1 || svc.created[0].Title != "Plan" {
		t.Fatalf("expected created item Plan, got %+v", svc.created)
	}
	if len(m.items) != 2 {
		t.Fatalf("expected 2 items after reload, got %d", len(m.items))
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirmAction {
		t.Fatalf("expected confirm mode, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if len(svc.deleted) != 0 {
		t.Fatal("expected cancel to skip delete")
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if len(svc.deleted) != 1 || svc.deleted[0] != "t1" {
		t.Fatalf("expected t1 deleted, got %v", svc.deleted)
	}
}

func TestSettledOverrideHoldsGeometryAfterRelease(t *testing.T) {
	p, _ := domain.NewProject("p1", "Roadmap", "", testMonday)
	svc := newFakeService([]domain.Project{p}, []domain.Item{
		testItem(t, "t1", p.ID, "", "Design", "2026-08-24", 3),
	})
	m := loadReadyModel(t, newTestModel(svc))

	m = applyMsg(t, m, tea.MouseClickMsg{X: barX(1), Y: gridTopRows, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseMotionMsg{X: barX(1) + 8})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: barX(1) + 8, Button: tea.MouseLeft})

	if _, ok := m.settled.Get("t1", ""); !ok {
		t.Fatal("expected settled override after a moved release")
	}
	bar := m.buildGrid()[0].bars[0]
	visStart, widthCols, ok := m.barVisualSpan(bar)
	if !ok || visStart != 2 || widthCols != 3 {
		t.Fatalf("override span = (%d,%d,%v), want (2,3,true)", visStart, widthCols, ok)
	}
}
