package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// FallbackGroup is used when a dataset carries no recognisable group at all.
const FallbackGroup = "GPV1.1"

var groupPattern = regexp.MustCompile(`^GPV(\d+)\.(\d+)$`)

// GroupKey is a parsed "GPV<major>.<minor>" identifier.
type GroupKey struct {
	Raw   string
	Major int
	Minor int
}

// ParseGroupKey parses a group identifier such as "GPV1.2".
func ParseGroupKey(s string) (GroupKey, bool) {
	m := groupPattern.FindStringSubmatch(s)
	if m == nil {
		return GroupKey{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return GroupKey{}, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return GroupKey{}, false
	}
	return GroupKey{Raw: s, Major: major, Minor: minor}, true
}

// Less orders keys numerically on (major, minor).
func (k GroupKey) Less(o GroupKey) bool {
	if k.Major != o.Major {
		return k.Major < o.Major
	}
	if k.Minor != o.Minor {
		return k.Minor < o.Minor
	}
	return k.Raw < o.Raw
}

// Number returns the "major.minor" part of the key.
func (k GroupKey) Number() string {
	return fmt.Sprintf("%d.%d", k.Major, k.Minor)
}

func sortGroupKeys(keys []string) []string {
	parsed := make([]GroupKey, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		gk, ok := ParseGroupKey(k)
		if !ok {
			continue
		}
		seen[k] = true
		parsed = append(parsed, gk)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Less(parsed[j]) })
	out := make([]string, len(parsed))
	for i, gk := range parsed {
		out[i] = gk.Raw
	}
	return out
}

// DiscoverGroups returns the valid group keys of one day, sorted numerically.
func DiscoverGroups[V any](day map[string]V) []string {
	keys := make([]string, 0, len(day))
	for k := range day {
		keys = append(keys, k)
	}
	return sortGroupKeys(keys)
}

// DatasetGroups returns every valid group key found in fact days and the
// weekly preset, sorted numerically.
func DatasetGroups(ds *Dataset) []string {
	if ds == nil {
		return nil
	}
	var keys []string
	for _, day := range ds.Fact.Data {
		for k := range day {
			keys = append(keys, k)
		}
	}
	for k := range ds.Preset.Data {
		keys = append(keys, k)
	}
	return sortGroupKeys(keys)
}

// PickDefault selects the group to render: the requested key if the dataset
// has it, else the injected default if present, else the first discovered
// group, else FallbackGroup.
func PickDefault(ds *Dataset, requested, injected string) string {
	groups := DatasetGroups(ds)
	has := func(k string) bool {
		if k == "" {
			return false
		}
		for _, g := range groups {
			if g == k {
				return true
			}
		}
		return false
	}
	switch {
	case has(requested):
		return requested
	case has(injected):
		return injected
	case len(groups) > 0:
		return groups[0]
	}
	return FallbackGroup
}

// DisplayName returns the human name of a group.
func DisplayName(p Preset, key string) string {
	if n, ok := p.SchNames[key]; ok && n != "" {
		return n
	}
	if gk, ok := ParseGroupKey(key); ok {
		return "Черга " + gk.Number()
	}
	return key
}
