package schedule

import (
	"strconv"
	"time"
)

// TableKind names the view a table was built for.
type TableKind string

const (
	TableToday  TableKind = "today"
	TableWeek   TableKind = "week"
	TableGroups TableKind = "groups"
)

// IconSet selects which family of half-slot icons a renderer should use.
// The week table shows planned data; today and groups tables show fact data.
type IconSet string

const (
	IconSetPlanned IconSet = "planned"
	IconSetFact    IconSet = "fact"
)

// IconKind identifies the icon of a cell. Empty means no icon.
type IconKind string

// Placeholder messages.
const (
	MsgNoGroupSchedule = "Немає графіка для цієї черги"
	MsgNoDayData       = "Немає даних на цей день"
	MsgNoGroups        = "Немає даних по чергах"
)

// Cell is one slot of a row.
type Cell struct {
	State   CellState `json:"state"`
	Tooltip string    `json:"tooltip,omitempty"`
	Icon    IconKind  `json:"icon,omitempty"`
}

// Row is a labelled sequence of cells, or a placeholder spanning the table.
type Row struct {
	Label     string `json:"label"`
	Key       string `json:"key,omitempty"`
	Day       int64  `json:"day,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Cells     []Cell `json:"cells,omitempty"`

	Placeholder bool   `json:"placeholder,omitempty"`
	Message     string `json:"message,omitempty"`
	Span        int    `json:"span,omitempty"`
}

// TableView is a renderer-agnostic table.
type TableView struct {
	Kind    TableKind  `json:"kind"`
	IconSet IconSet    `json:"icon_set"`
	Columns []TimeSlot `json:"columns"`
	Rows    []Row      `json:"rows"`
	Now     *NowMarker `json:"now,omitempty"`
}

// NowMarker points at the cell covering the current moment.
type NowMarker struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func iconFor(set IconSet, s CellState) IconKind {
	switch s {
	case StateFirst, StateMFirst, StateSecond, StateMSecond:
		return IconKind(string(set) + "-" + string(s))
	}
	return ""
}

func buildCells(p Preset, slots []TimeSlot, set IconSet, day DaySchedule) []Cell {
	cells := make([]Cell, len(slots))
	for i, slot := range slots {
		st := Classify(day[slot.Key])
		cells[i] = Cell{
			State:   st,
			Tooltip: p.TimeType[string(st)],
			Icon:    iconFor(set, st),
		}
	}
	return cells
}

func placeholderRow(msg string, span int) Row {
	return Row{Placeholder: true, Message: msg, Span: span}
}

// BuildToday builds the fact table for one group: a row for today (when the
// dataset knows today) and a row for the next available day.
func BuildToday(p Preset, f Fact, group string) TableView {
	slots := BuildTimeGrid(p.TimeZone)
	tv := TableView{Kind: TableToday, IconSet: IconSetFact, Columns: slots}

	days := make([]int64, 0, 2)
	if f.Today != 0 {
		days = append(days, f.Today)
	}
	if next := f.NextDay(); next != 0 {
		days = append(days, next)
	}
	for _, epoch := range days {
		groups, _ := f.Day(epoch)
		tv.Rows = append(tv.Rows, Row{
			Label: DayLabel(epoch),
			Day:   epoch,
			Cells: buildCells(p, slots, IconSetFact, groups[group]),
		})
	}
	return tv
}

// MarkNow points tv at the cell of now's Kyiv day that covers now. Tables
// without a row for that day stay unmarked.
func MarkNow(tv *TableView, now time.Time) {
	k := inKyiv(now)
	col := LastBoundaryAtOrBefore(tv.Columns, k.Hour()*60+k.Minute())
	if col < 0 {
		return
	}
	today := DayStart(now)
	for i, r := range tv.Rows {
		if !r.Placeholder && r.Day == today {
			tv.Now = &NowMarker{Row: i, Column: col}
			return
		}
	}
}

// BuildWeek builds the planned weekly table for one group. todayWeekday
// (1=Monday..7=Sunday, 0 for none) marks the highlighted row.
func BuildWeek(p Preset, group string, todayWeekday int) TableView {
	slots := BuildTimeGrid(p.TimeZone)
	tv := TableView{Kind: TableWeek, IconSet: IconSetPlanned, Columns: slots}

	week, ok := p.Data[group]
	if !ok || len(week) == 0 {
		tv.Rows = []Row{placeholderRow(MsgNoGroupSchedule, len(slots))}
		return tv
	}
	for _, k := range SortedKeys(p.Days) {
		idx, _ := strconv.Atoi(k)
		tv.Rows = append(tv.Rows, Row{
			Label:     p.Days[k],
			Key:       k,
			Highlight: todayWeekday != 0 && idx == todayWeekday,
			Cells:     buildCells(p, slots, IconSetPlanned, week[k]),
		})
	}
	return tv
}

// BuildGroups builds the all-groups matrix for the day starting at target.
// A zero target means today.
func BuildGroups(p Preset, f Fact, target int64) TableView {
	slots := BuildTimeGrid(p.TimeZone)
	tv := TableView{Kind: TableGroups, IconSet: IconSetFact, Columns: slots}

	if target == 0 {
		target = f.Today
	}
	day, ok := f.Day(target)
	if !ok {
		tv.Rows = []Row{placeholderRow(MsgNoDayData, len(slots))}
		return tv
	}
	groups := DiscoverGroups(day)
	if len(groups) == 0 {
		tv.Rows = []Row{placeholderRow(MsgNoGroups, len(slots))}
		return tv
	}
	for _, g := range groups {
		tv.Rows = append(tv.Rows, Row{
			Label: DisplayName(p, g),
			Key:   g,
			Day:   target,
			Cells: buildCells(p, slots, IconSetFact, day[g]),
		})
	}
	return tv
}
