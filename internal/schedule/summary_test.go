package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func quarterPreset() Preset {
	return Preset{TimeZone: map[string][]string{
		"0": {"00:00"},
		"1": {"06:00"},
		"2": {"12:00"},
		"3": {"18:00"},
	}}
}

func TestSummarizeMergesHalfStates(t *testing.T) {
	day := DaySchedule{"0": "no", "1": "yes", "2": "mfirst", "3": "yes"}
	s := Summarize(quarterPreset(), day)
	assert.Equal(t, StatusOffSome, s.Status)
	assert.Equal(t, []Interval{{0, 360}, {720, 750}}, s.Intervals)
	assert.Equal(t, "00:00–06:00, 12:00–12:30", s.Text())
}

func TestSummarizeAllYes(t *testing.T) {
	day := DaySchedule{"0": "yes", "1": "yes", "2": "yes", "3": "yes"}
	s := Summarize(quarterPreset(), day)
	assert.Equal(t, Summary{Status: StatusOnAllDay, Intervals: []Interval{}}, s)
	assert.Equal(t, "Світло є весь день", s.Text())
}

func TestSummarizeNoData(t *testing.T) {
	s := Summarize(quarterPreset(), nil)
	assert.Equal(t, Summary{Status: StatusUnknown, Intervals: []Interval{}}, s)
	assert.Equal(t, "Немає даних", s.Text())

	s = Summarize(quarterPreset(), DaySchedule{"0": "maybe", "1": "yes", "2": "yes", "3": "yes"})
	assert.Equal(t, StatusUnknown, s.Status, "maybe is not a confirmed all-clear")

	s = Summarize(Preset{}, DaySchedule{"0": "yes"})
	assert.Equal(t, StatusUnknown, s.Status)
}

func TestSummarizeFixtureDay(t *testing.T) {
	ds := loadFixture(t)
	day, _ := ds.Fact.Day(fixtureToday)

	s := Summarize(ds.Preset, day["GPV1.1"])
	assert.Equal(t, StatusOffSome, s.Status)
	assert.Equal(t, []Interval{{0, 120}, {510, 630}, {1080, 1110}}, s.Intervals)

	s = Summarize(ds.Preset, day["GPV10.1"])
	assert.Equal(t, []Interval{{1380, 1440}}, s.Intervals)
	assert.Equal(t, "23:00–24:00", s.Text())
}

func TestMergeIntervals(t *testing.T) {
	assert.Equal(t, []Interval{{0, 720}}, MergeIntervals([]Interval{{360, 720}, {0, 360}}))
	assert.Equal(t, []Interval{{0, 400}, {500, 600}},
		MergeIntervals([]Interval{{0, 300}, {500, 600}, {200, 400}}))
	assert.Equal(t, []Interval{{0, 100}}, MergeIntervals([]Interval{{0, 100}, {10, 20}}))
	assert.Empty(t, MergeIntervals(nil))
}
