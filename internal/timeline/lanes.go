package timeline

import "sort"

const (
	// MaxVisibleLanes caps how many lanes render inside one row block.
	MaxVisibleLanes = 5
	// LaneStep is the vertical nudge unit between neighboring lanes.
	LaneStep = 6
)

// LaneItem is one bar candidate destined for a collapsed row: the
// parent task when SubitemID is empty, a subitem otherwise.
type LaneItem struct {
	TaskID       string
	SubitemID    string
	StartKey     string
	DurationDays int
	Color        string
	Label        string
}

func (li LaneItem) identity() string {
	return li.TaskID + "/" + li.SubitemID
}

// BarLayout is the placement computed for one bar.
type BarLayout struct {
	TaskID      string
	SubitemID   string
	Lane        int
	VisualStart int
	VisualEnd   int
	OffsetY     int
	Hidden      bool
	Color       string
	Label       string
}

// Width returns the bar's width in columns.
func (b BarLayout) Width() int {
	return b.VisualEnd - b.VisualStart
}

// RowLayout is the result of packing one collapsed row.
type RowLayout struct {
	Bars     []BarLayout
	Lanes    int
	Overflow int
}

// LayoutRow assigns lanes and vertical offsets to the bars of one
// collapsed row. It is a pure function: identical input yields an
// identical layout. Items with no start key, or whose start resolves
// to no visible column after probing, are excluded.
func LayoutRow(items []LaneItem, cal *Calendar, m *Mapping) RowLayout {
	bars := make([]BarLayout, 0, len(items))
	for _, item := range items {
		if item.StartKey == "" || item.DurationDays < 1 {
			continue
		}
		calStart, ok := cal.OffsetForKey(item.StartKey)
		if !ok {
			continue
		}
		visStart, ok := m.ProbeVisualIndex(calStart)
		if !ok {
			continue
		}
		visEnd, ok := m.ProbeVisualIndex(calStart + item.DurationDays)
		if !ok || visEnd <= visStart {
			visEnd = visStart + item.DurationDays
		}
		bars = append(bars, BarLayout{
			TaskID:      item.TaskID,
			SubitemID:   item.SubitemID,
			VisualStart: visStart,
			VisualEnd:   visEnd,
			Color:       item.Color,
			Label:       item.Label,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		a, b := bars[i], bars[j]
		if a.VisualStart != b.VisualStart {
			return a.VisualStart < b.VisualStart
		}
		if a.VisualEnd != b.VisualEnd {
			return a.VisualEnd < b.VisualEnd
		}
		if (a.SubitemID == "") != (b.SubitemID == "") {
			return a.SubitemID == ""
		}
		return a.TaskID+"/"+a.SubitemID < b.TaskID+"/"+b.SubitemID
	})

	// Greedy interval packing over lane end cursors yields the minimum
	// lane count for the overlap structure.
	var laneEnds []int
	for i := range bars {
		assigned := -1
		for lane, end := range laneEnds {
			if end <= bars[i].VisualStart {
				assigned = lane
				break
			}
		}
		if assigned == -1 {
			assigned = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[assigned] = bars[i].VisualEnd
		bars[i].Lane = assigned
		bars[i].Hidden = assigned >= MaxVisibleLanes
	}

	overflow := 0
	for i := range bars {
		if bars[i].Hidden {
			overflow++
			continue
		}
		bars[i].OffsetY = localOffset(bars, i)
	}

	return RowLayout{Bars: bars, Lanes: len(laneEnds), Overflow: overflow}
}

// localOffset nudges a bar vertically based on the lanes its own
// overlap cluster occupies. An isolated bar stays centered.
func localOffset(bars []BarLayout, i int) int {
	self := bars[i]
	laneSet := map[int]struct{}{self.Lane: {}}
	for j := range bars {
		if j == i || bars[j].Hidden {
			continue
		}
		if bars[j].VisualStart < self.VisualEnd && bars[j].VisualEnd > self.VisualStart {
			laneSet[bars[j].Lane] = struct{}{}
		}
	}

	lanes := make([]int, 0, len(laneSet))
	for lane := range laneSet {
		lanes = append(lanes, lane)
	}
	sort.Ints(lanes)
	if len(lanes) > MaxVisibleLanes {
		lanes = lanes[:MaxVisibleLanes]
	}

	rank := 0
	for idx, lane := range lanes {
		if lane == self.Lane {
			rank = idx
			break
		}
	}
	return (2*rank - (len(lanes) - 1)) * LaneStep / 2
}
