// Package render is the single entry point that turns a dataset and a set of
// options into the view-models a page layout asks for.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"no-lights-schedule/internal/schedule"
)

var (
	ErrNilDataset  = schedule.ErrNilDataset
	ErrUnknownMode = errors.New("unknown render mode")
	ErrUnknownDay  = errors.New("unknown render day")
)

// Mode selects which views to build.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeEmergency Mode = "emergency"
	ModeWeek      Mode = "week"
	ModeGroups    Mode = "groups"
	ModeSummary   Mode = "summary"
	ModeAuto      Mode = "auto"
)

// Day selects the day of the groups matrix.
type Day string

const (
	DayToday    Day = "today"
	DayTomorrow Day = "tomorrow"
)

// Container names a view slot a layout can provide.
type Container string

const (
	ContainerToday   Container = "today"
	ContainerWeek    Container = "week"
	ContainerGroups  Container = "groups"
	ContainerSummary Container = "summary"
)

var modeContainers = map[Mode][]Container{
	ModeFull:      {ContainerToday, ContainerWeek},
	ModeEmergency: {ContainerToday},
	ModeWeek:      {ContainerWeek},
	ModeGroups:    {ContainerGroups},
	ModeSummary:   {ContainerSummary},
}

// ParseMode parses a mode name. Empty means full.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeFull, nil
	}
	if m == ModeAuto {
		return m, nil
	}
	if _, ok := modeContainers[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// ParseDay parses a day name. Empty means today.
func ParseDay(s string) (Day, error) {
	switch d := Day(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DayToday, nil
	case DayToday, DayTomorrow:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDay, s)
}

// Options are the recognised initialization options.
type Options struct {
	Mode Mode
	Day  Day
}

// Request carries what the caller knows about the page being rendered.
type Request struct {
	Group        string
	DefaultGroup string
	// Containers lists the view slots the layout has prepared. Only used
	// by ModeAuto.
	Containers []Container
	Now        time.Time
}

// DaySummary is the condensed outage picture of one fact day.
type DaySummary struct {
	Day   int64  `json:"day"`
	Label string `json:"label"`
	Text  string `json:"text"`
	schedule.Summary
}

// Result holds every view-model built for one call. Views that were not
// requested stay nil.
type Result struct {
	Region    string              `json:"region"`
	Group     string              `json:"group"`
	GroupName string              `json:"group_name"`
	Update    string              `json:"update"`
	Today     *schedule.TableView `json:"today,omitempty"`
	Week      *schedule.TableView `json:"week,omitempty"`
	Groups    *schedule.TableView `json:"groups,omitempty"`
	Summaries []DaySummary        `json:"summaries,omitempty"`
}

// Containers returns the view slots a mode fills. For ModeAuto the
// declared containers are returned, deduplicated and with unknown names
// dropped.
func Containers(m Mode, declared []Container) ([]Container, error) {
	if m == ModeAuto {
		seen := make(map[Container]bool, len(declared))
		var out []Container
		for _, c := range declared {
			switch c {
			case ContainerToday, ContainerWeek, ContainerGroups, ContainerSummary:
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
		return out, nil
	}
	cs, ok := modeContainers[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	return cs, nil
}

// Render builds the views selected by opts for one group of ds.
func Render(ds *schedule.Dataset, opts Options, req Request) (*Result, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeFull
	}
	day := opts.Day
	if day == "" {
		day = DayToday
	}
	if day != DayToday && day != DayTomorrow {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	containers, err := Containers(mode, req.Containers)
	if err != nil {
		return nil, err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	group := schedule.PickDefault(ds, req.Group, req.DefaultGroup)
	res := &Result{
		Region:    ds.RegionID,
		Group:     group,
		GroupName: schedule.DisplayName(ds.Preset, group),
		Update:    ds.LastUpdate(now),
	}

	for _, c := range containers {
		switch c {
		case ContainerToday:
			tv := schedule.BuildToday(ds.Preset, ds.Fact, group)
			schedule.MarkNow(&tv, now)
			res.Today = &tv
		case ContainerWeek:
			tv := schedule.BuildWeek(ds.Preset, group, schedule.WeekdayIndex(ds.Fact.Today))
			res.Week = &tv
		case ContainerGroups:
			tv := schedule.BuildGroups(ds.Preset, ds.Fact, targetDay(ds.Fact, day))
			res.Groups = &tv
		case ContainerSummary:
			res.Summaries = Summaries(ds, group)
		}
	}
	return res, nil
}

// Summaries summarizes group for today and the next available day, in
// that order. Days the dataset does not know are skipped.
func Summaries(ds *schedule.Dataset, group string) []DaySummary {
	out := []DaySummary{}
	if ds == nil {
		return out
	}
	for _, epoch := range []int64{ds.Fact.Today, ds.Fact.NextDay()} {
		groups, ok := ds.Fact.Day(epoch)
		if !ok {
			continue
		}
		s := schedule.Summarize(ds.Preset, groups[group])
		out = append(out, DaySummary{
			Day:     epoch,
			Label:   schedule.DayLabel(epoch),
			Text:    s.Text(),
			Summary: s,
		})
	}
	return out
}

func targetDay(f schedule.Fact, d Day) int64 {
	if d == DayTomorrow {
		if next := f.NextDay(); next != 0 {
			return next
		}
		// Unknown tomorrow; an absent key yields the no-data placeholder.
		if f.Today != 0 {
			return f.Today + 86400
		}
		return -1
	}
	return f.Today
}
