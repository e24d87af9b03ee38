// Package schedule turns outage datasets into renderer-agnostic view-models.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrNilDataset is returned when an operation is handed no dataset at all.
var ErrNilDataset = errors.New("schedule: nil dataset")

// DaySchedule maps slot key ("1".."24") to a raw state code.
type DaySchedule map[string]string

// GroupDays maps group key (e.g. "GPV1.1") to its day schedule.
type GroupDays map[string]DaySchedule

// Dataset is the top-level JSON document published by the outage parser.
type Dataset struct {
	RegionID          string `json:"regionId"`
	LastUpdated       string `json:"lastUpdated"`
	Preset            Preset `json:"preset"`
	Fact              Fact   `json:"fact"`
	RegionAffiliation string `json:"regionAffiliation,omitempty"`
	Meta              *Meta  `json:"meta,omitempty"`
}

// Meta carries optional bookkeeping added by the publisher.
type Meta struct {
	ContentHash string `json:"contentHash,omitempty"`
}

// Preset is the static weekly schedule template.
type Preset struct {
	// TimeZone maps slot index to [label, start, end], e.g. "1": ["00-01", "00:00", "01:00"].
	TimeZone map[string][]string `json:"time_zone,omitempty"`
	// Days maps weekday index (1=Monday) to its display name.
	Days map[string]string `json:"days,omitempty"`
	// TimeType maps a state code to its human description.
	TimeType map[string]string `json:"time_type,omitempty"`
	// SchNames maps a group key to its display name.
	SchNames map[string]string `json:"sch_names,omitempty"`
	// Data is group -> weekday index -> slot -> state.
	Data       map[string]map[string]DaySchedule `json:"data,omitempty"`
	Update     string                            `json:"update,omitempty"`
	UpdateFact string                            `json:"updateFact,omitempty"`
}

// Fact contains actual outage data keyed by the epoch of the day's midnight.
type Fact struct {
	// Today is the epoch (seconds) of today's midnight. Zero means absent.
	Today  int64                `json:"today,omitempty"`
	Update string               `json:"update,omitempty"`
	Data   map[string]GroupDays `json:"data,omitempty"`
}

// Decode parses a dataset document.
func Decode(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// Day returns the group map for the day starting at epoch.
func (f Fact) Day(epoch int64) (GroupDays, bool) {
	if epoch == 0 {
		return nil, false
	}
	day, ok := f.Data[strconv.FormatInt(epoch, 10)]
	return day, ok
}

// DayKeys returns the epochs present in fact data, ascending.
// Keys that are not integers are ignored.
func (f Fact) DayKeys() []int64 {
	keys := make([]int64, 0, len(f.Data))
	for k := range f.Data {
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, n)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// NextDay returns the day shown after today: the smallest key strictly
// greater than today, else the first key that is not today. Returns 0
// when no such key exists.
func (f Fact) NextDay() int64 {
	keys := f.DayKeys()
	for _, k := range keys {
		if k > f.Today {
			return k
		}
	}
	for _, k := range keys {
		if k != f.Today {
			return k
		}
	}
	return 0
}

// SortedKeys returns the integer-valued keys of m ordered by numeric value.
// Non-integer keys are dropped.
func SortedKeys[V any](m map[string]V) []string {
	type entry struct {
		key string
		n   int
	}
	entries := make([]entry, 0, len(m))
	for k := range m {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		entries = append(entries, entry{key: k, n: n})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n < entries[j].n
		}
		return entries[i].key < entries[j].key
	})
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}
