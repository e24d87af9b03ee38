package schedule

import (
	"fmt"
	"strconv"
)

// DefaultTimeTypes are the state descriptions used when the preset has none.
var DefaultTimeTypes = map[string]string{
	"yes":     "Світло є",
	"no":      "Світла нема",
	"maybe":   "Можливо відключення",
	"first":   "Перші 30 хв",
	"second":  "Другі 30 хв",
	"mfirst":  "Можливо перші 30 хв",
	"msecond": "Можливо другі 30 хв",
}

// HourlyTimeZone returns 24 one-hour slots keyed "1".."24".
func HourlyTimeZone() map[string][]string {
	tz := make(map[string][]string, 24)
	for i := 1; i <= 24; i++ {
		tz[strconv.Itoa(i)] = []string{
			fmt.Sprintf("%02d-%02d", i-1, i),
			fmt.Sprintf("%02d:00", i-1),
			fmt.Sprintf("%02d:00", i),
		}
	}
	return tz
}

// Normalize returns a copy of ds with every missing preset section filled in
// from defaults or from fact data. Sections already present are kept as is.
// The returned dataset shares day schedules with ds; treat both as read-only.
func Normalize(ds *Dataset) *Dataset {
	if ds == nil {
		return nil
	}
	out := *ds
	p := &out.Preset

	if len(p.TimeZone) == 0 {
		p.TimeZone = HourlyTimeZone()
	}
	if len(p.Days) == 0 {
		p.Days = make(map[string]string, len(WeekdayNames))
		for i, name := range WeekdayNames {
			p.Days[strconv.Itoa(i)] = name
		}
	}
	if len(p.TimeType) == 0 {
		p.TimeType = make(map[string]string, len(DefaultTimeTypes))
		for k, v := range DefaultTimeTypes {
			p.TimeType[k] = v
		}
	}
	if len(p.Data) == 0 {
		if keys := ds.Fact.DayKeys(); len(keys) > 0 {
			first, _ := ds.Fact.Day(keys[0])
			p.Data = make(map[string]map[string]DaySchedule)
			for _, g := range DiscoverGroups(first) {
				week := make(map[string]DaySchedule, 7)
				for i := 1; i <= 7; i++ {
					week[strconv.Itoa(i)] = first[g]
				}
				p.Data[g] = week
			}
		}
	}
	if len(p.SchNames) == 0 {
		groups := DatasetGroups(&out)
		p.SchNames = make(map[string]string, len(groups))
		for _, g := range groups {
			gk, _ := ParseGroupKey(g)
			p.SchNames[g] = "Черга " + gk.Number()
		}
	}
	return &out
}
