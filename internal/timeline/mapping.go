package timeline

// probeWindow bounds forward probing when a direct index lookup lands
// on a hidden day run.
const probeWindow = 3

// Mapping converts between calendar indices and visible column
// positions for one showWeekends setting. Both lookup tables are built
// together and stay mutual inverses over the domain where both are
// defined.
type Mapping struct {
	showWeekends bool
	dayToVisual  map[int]int
	visualToDay  []int
}

// NewMapping constructs a new value for this package.
func NewMapping(cal *Calendar, showWeekends bool) *Mapping {
	m := &Mapping{
		showWeekends: showWeekends,
		dayToVisual:  make(map[int]int, len(cal.days)),
		visualToDay:  make([]int, 0, len(cal.days)),
	}
	for _, day := range cal.days {
		if !showWeekends && day.Weekend {
			continue
		}
		m.dayToVisual[day.RelativeIndex] = len(m.visualToDay)
		m.visualToDay = append(m.visualToDay, day.RelativeIndex)
	}
	return m
}

// ShowWeekends reports the setting the tables were built for.
func (m *Mapping) ShowWeekends() bool {
	return m.showWeekends
}

// VisibleCount returns the number of visible columns.
func (m *Mapping) VisibleCount() int {
	return len(m.visualToDay)
}

// ToVisualIndex converts a calendar index to its visible column. It
// reports false when the day is hidden or outside the span.
func (m *Mapping) ToVisualIndex(cal int) (int, bool) {
	vis, ok := m.dayToVisual[cal]
	return vis, ok
}

// ToCalendarIndex converts a visible column back to a calendar index.
func (m *Mapping) ToCalendarIndex(vis int) (int, bool) {
	if vis < 0 || vis >= len(m.visualToDay) {
		return 0, false
	}
	return m.visualToDay[vis], true
}

// ProbeVisualIndex resolves a calendar index to a column, probing up
// to probeWindow days forward past a hidden day run.
func (m *Mapping) ProbeVisualIndex(cal int) (int, bool) {
	for step := 0; step <= probeWindow; step++ {
		if vis, ok := m.dayToVisual[cal+step]; ok {
			return vis, ok
		}
	}
	return 0, false
}

// ProbeCalendarIndex resolves a column to a calendar index, probing up
// to probeWindow columns forward. When the probe misses it falls back
// to an uncorrected linear estimate off the last mapped column.
func (m *Mapping) ProbeCalendarIndex(vis int) int {
	for step := 0; step <= probeWindow; step++ {
		if cal, ok := m.ToCalendarIndex(vis + step); ok {
			return cal
		}
	}
	last := len(m.visualToDay) - 1
	if last < 0 {
		return vis
	}
	if vis < 0 {
		return m.visualToDay[0] + vis
	}
	return m.visualToDay[last] + (vis - last)
}

// Clone deep-copies both tables for a gesture snapshot.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{
		showWeekends: m.showWeekends,
		dayToVisual:  make(map[int]int, len(m.dayToVisual)),
		visualToDay:  make([]int, len(m.visualToDay)),
	}
	for cal, vis := range m.dayToVisual {
		out.dayToVisual[cal] = vis
	}
	copy(out.visualToDay, m.visualToDay)
	return out
}
