package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the end boundary of the last slot of a day.
const MinutesPerDay = 24 * 60

// TimeSlot is one column of the schedule grid.
type TimeSlot struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Label string `json:"label"`
	// StartMinutes is minutes since midnight; meaningful only when Valid.
	StartMinutes int  `json:"start_minutes"`
	Valid        bool `json:"valid"`
}

var (
	clockLabel = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	rangeLabel = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})$`)
	hourLabel  = regexp.MustCompile(`^(\d{1,2})$`)
)

// ParseSlotLabel converts a slot label into minutes since midnight.
// Accepted forms are "HH:MM", "H-H2" (start hour only) and a bare hour.
func ParseSlotLabel(label string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if m := clockLabel.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		return clamp(h, 0, 24)*60 + clamp(mm, 0, 59), true
	}
	if m := rangeLabel.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return clamp(h, 0, 24) * 60, true
	}
	if m := hourLabel.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return clamp(h, 0, 24) * 60, true
	}
	return 0, false
}

// BuildTimeGrid turns the preset time_zone map into slots ordered by index.
func BuildTimeGrid(timeZone map[string][]string) []TimeSlot {
	keys := SortedKeys(timeZone)
	slots := make([]TimeSlot, 0, len(keys))
	for _, k := range keys {
		idx, _ := strconv.Atoi(k)
		var label string
		if v := timeZone[k]; len(v) > 0 {
			label = v[0]
		}
		start, ok := ParseSlotLabel(label)
		slots = append(slots, TimeSlot{
			Index:        idx,
			Key:          k,
			Label:        label,
			StartMinutes: start,
			Valid:        ok,
		})
	}
	return slots
}

// LastBoundaryAtOrBefore returns the position of the slot with the greatest
// start <= minutes, or -1. Invalid slots are skipped.
func LastBoundaryAtOrBefore(slots []TimeSlot, minutes int) int {
	best := -1
	for i, s := range slots {
		if !s.Valid || s.StartMinutes > minutes {
			continue
		}
		if best < 0 || s.StartMinutes >= slots[best].StartMinutes {
			best = i
		}
	}
	return best
}

// SlotEnd returns where slot i ends: the start of the next valid slot,
// or the end of the day for the last one.
func SlotEnd(slots []TimeSlot, i int) int {
	for j := i + 1; j < len(slots); j++ {
		if slots[j].Valid {
			return slots[j].StartMinutes
		}
	}
	return MinutesPerDay
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
