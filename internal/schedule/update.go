package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Stamp is a wall-clock "last updated" marker in the Kyiv timezone.
type Stamp struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

var updatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?\s+(\d{1,2}):(\d{2})$`)

// ParseUpdate parses "D.M[.YYYY] H:MM". A missing year is taken from now
// in the Kyiv calendar. Returns nil when text is empty or malformed.
func ParseUpdate(text string, now time.Time) *Stamp {
	m := updatePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	st := &Stamp{}
	st.Day, _ = strconv.Atoi(m[1])
	st.Month, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		st.Year, _ = strconv.Atoi(m[3])
	} else {
		st.Year = CurrentYear(now)
	}
	st.Hour, _ = strconv.Atoi(m[4])
	st.Minute, _ = strconv.Atoi(m[5])
	return st
}

// CompareStamps orders stamps by (year, month, day, hour, minute).
// nil sorts before any stamp; two nils are equal.
func CompareStamps(a, b *Stamp) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	pairs := [][2]int{
		{a.Year, b.Year},
		{a.Month, b.Month},
		{a.Day, b.Day},
		{a.Hour, b.Hour},
		{a.Minute, b.Minute},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// ResolveAuthoritative picks the later of the two update texts. If only one
// parses it wins; if neither does, factText is returned.
func ResolveAuthoritative(factText, presetText string, now time.Time) string {
	f := ParseUpdate(factText, now)
	p := ParseUpdate(presetText, now)
	switch {
	case f != nil && p != nil:
		if CompareStamps(p, f) > 0 {
			return presetText
		}
		return factText
	case p != nil:
		return presetText
	default:
		return factText
	}
}

// LastUpdate returns the authoritative update text for the dataset.
func (ds *Dataset) LastUpdate(now time.Time) string {
	presetText := ds.Preset.UpdateFact
	if presetText == "" {
		presetText = ds.Preset.Update
	}
	return ResolveAuthoritative(ds.Fact.Update, presetText, now)
}
