package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// DayStatus is the day-level verdict of a summary.
type DayStatus string

const (
	StatusOnAllDay DayStatus = "on-all-day"
	StatusOffSome  DayStatus = "off-some"
	// StatusUnknown means there was nothing to confirm either way. It is not
	// the same as a day with no outages.
	StatusUnknown DayStatus = "unknown"
)

const (
	msgOnAllDay = "Світло є весь день"
	msgUnknown  = "Немає даних"
)

// Summary is the condensed outage picture of one day for one group.
type Summary struct {
	Status    DayStatus  `json:"status"`
	Intervals []Interval `json:"intervals"`
}

// Summarize merges the outage parts of every slot of day into intervals.
func Summarize(p Preset, day DaySchedule) Summary {
	slots := BuildTimeGrid(p.TimeZone)

	var chunks []Interval
	classified := 0
	allYes := true
	for i, slot := range slots {
		if !slot.Valid {
			continue
		}
		st := Classify(day[slot.Key])
		classified++
		if st != StateYes {
			allYes = false
		}
		end := SlotEnd(slots, i)
		if end <= slot.StartMinutes {
			continue
		}
		if iv, ok := HalfHourSplit(st, slot.StartMinutes, end); ok && iv.End > iv.Start {
			chunks = append(chunks, iv)
		}
	}

	if len(chunks) == 0 {
		if allYes && classified > 0 {
			return Summary{Status: StatusOnAllDay, Intervals: []Interval{}}
		}
		return Summary{Status: StatusUnknown, Intervals: []Interval{}}
	}
	return Summary{Status: StatusOffSome, Intervals: MergeIntervals(chunks)}
}

// MergeIntervals sorts chunks by start and joins those that touch or overlap.
func MergeIntervals(chunks []Interval) []Interval {
	if len(chunks) == 0 {
		return []Interval{}
	}
	sorted := make([]Interval, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Interval{sorted[0]}
	for _, c := range sorted[1:] {
		last := &merged[len(merged)-1]
		if c.Start <= last.End {
			last.End = max(last.End, c.End)
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

// FormatMinutes renders minutes since midnight as "HH:MM"; 1440 is "24:00".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatInterval renders an interval as "HH:MM–HH:MM".
func FormatInterval(iv Interval) string {
	return FormatMinutes(iv.Start) + "–" + FormatMinutes(iv.End)
}

// Text renders the summary as a single human-readable line.
func (s Summary) Text() string {
	switch s.Status {
	case StatusOnAllDay:
		return msgOnAllDay
	case StatusOffSome:
		parts := make([]string, len(s.Intervals))
		for i, iv := range s.Intervals {
			parts[i] = FormatInterval(iv)
		}
		return strings.Join(parts, ", ")
	}
	return msgUnknown
}
