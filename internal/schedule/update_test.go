package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.November, 13, 12, 0, 0, 0, time.UTC)

func TestParseUpdate(t *testing.T) {
	st := ParseUpdate("13.11.2025 14:30", testNow)
	require.NotNil(t, st)
	assert.Equal(t, Stamp{Year: 2025, Month: 11, Day: 13, Hour: 14, Minute: 30}, *st)

	st = ParseUpdate("8.11 9:05", testNow)
	require.NotNil(t, st)
	assert.Equal(t, Stamp{Year: 2025, Month: 11, Day: 8, Hour: 9, Minute: 5}, *st)

	st = ParseUpdate("08.11.24 09:00", testNow)
	require.NotNil(t, st)
	assert.Equal(t, 24, st.Year)

	assert.Nil(t, ParseUpdate("", testNow))
	assert.Nil(t, ParseUpdate("yesterday", testNow))
	assert.Nil(t, ParseUpdate("08.11 9h00", testNow))
}

func TestParseUpdateYearFollowsKyivCalendar(t *testing.T) {
	if _, ok := Location(); !ok {
		t.Skip("tz database unavailable")
	}
	// 23:30 UTC on Dec 31 is already Jan 1 in Kyiv.
	now := time.Date(2025, time.December, 31, 23, 30, 0, 0, time.UTC)
	st := ParseUpdate("01.01 00:10", now)
	require.NotNil(t, st)
	assert.Equal(t, 2026, st.Year)
}

func TestCompareStamps(t *testing.T) {
	a := &Stamp{2025, 11, 8, 9, 0}
	b := &Stamp{2025, 11, 8, 14, 30}
	assert.Equal(t, -1, CompareStamps(a, b))
	assert.Equal(t, 1, CompareStamps(b, a))
	assert.Equal(t, 0, CompareStamps(a, &Stamp{2025, 11, 8, 9, 0}))
	assert.Equal(t, -1, CompareStamps(nil, a))
	assert.Equal(t, 1, CompareStamps(a, nil))
	assert.Equal(t, 0, CompareStamps(nil, nil))
	assert.Equal(t, 1, CompareStamps(&Stamp{2026, 1, 1, 0, 0}, &Stamp{2025, 12, 31, 23, 59}))
}

func TestResolveAuthoritative(t *testing.T) {
	assert.Equal(t, "08.11 14:30", ResolveAuthoritative("08.11 14:30", "08.11 09:00", testNow))
	assert.Equal(t, "08.11 14:30", ResolveAuthoritative("08.11 09:00", "08.11 14:30", testNow))
	assert.Equal(t, "08.11 09:00", ResolveAuthoritative("garbage", "08.11 09:00", testNow))
	assert.Equal(t, "08.11 09:00", ResolveAuthoritative("08.11 09:00", "garbage", testNow))
	assert.Equal(t, "08.11 09:00", ResolveAuthoritative("", "08.11 09:00", testNow))
	assert.Equal(t, "garbage", ResolveAuthoritative("garbage", "nope", testNow))
	assert.Equal(t, "", ResolveAuthoritative("", "", testNow))
	// Equal stamps keep the fact text.
	assert.Equal(t, "08.11.2025 09:00", ResolveAuthoritative("08.11.2025 09:00", "8.11 9:00", testNow))
}

func TestDatasetLastUpdate(t *testing.T) {
	ds := loadFixture(t)
	assert.Equal(t, "13.11.2025 14:30", ds.LastUpdate(testNow))

	ds.Preset.UpdateFact = ""
	ds.Preset.Update = "13.11.2025 16:00"
	assert.Equal(t, "13.11.2025 16:00", ds.LastUpdate(testNow))
}
