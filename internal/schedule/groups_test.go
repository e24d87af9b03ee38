package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGroupKey(t *testing.T) {
	gk, ok := ParseGroupKey("GPV10.2")
	assert.True(t, ok)
	assert.Equal(t, GroupKey{Raw: "GPV10.2", Major: 10, Minor: 2}, gk)
	assert.Equal(t, "10.2", gk.Number())

	for _, bad := range []string{"GPV1", "bad", "gpv1.1", "GPV1.1a", "GPV.1", ""} {
		_, ok := ParseGroupKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestDiscoverGroupsNumericOrder(t *testing.T) {
	day := map[string]DaySchedule{
		"GPV2.1": nil, "GPV10.1": nil, "GPV1.2": nil, "bad": nil, "GPV1": nil,
	}
	assert.Equal(t, []string{"GPV1.2", "GPV2.1", "GPV10.1"}, DiscoverGroups(day))
	assert.Empty(t, DiscoverGroups(map[string]DaySchedule{"x": nil}))
}

func TestDatasetGroups(t *testing.T) {
	ds := loadFixture(t)
	assert.Equal(t, []string{"GPV1.1", "GPV1.2", "GPV2.1", "GPV10.1"}, DatasetGroups(ds))
	assert.Nil(t, DatasetGroups(nil))
}

func TestPickDefault(t *testing.T) {
	ds := loadFixture(t)

	assert.Equal(t, "GPV2.1", PickDefault(ds, "GPV2.1", "GPV1.2"))
	assert.Equal(t, "GPV1.2", PickDefault(ds, "GPV9.9", "GPV1.2"))
	assert.Equal(t, "GPV1.1", PickDefault(ds, "", "GPV9.9"))
	assert.Equal(t, FallbackGroup, PickDefault(&Dataset{}, "GPV2.1", "GPV1.2"))
	assert.Equal(t, FallbackGroup, PickDefault(nil, "", ""))
}

func TestDisplayName(t *testing.T) {
	p := Preset{SchNames: map[string]string{"GPV1.1": "Перша"}}
	assert.Equal(t, "Перша", DisplayName(p, "GPV1.1"))
	assert.Equal(t, "Черга 3.2", DisplayName(p, "GPV3.2"))
	assert.Equal(t, "odd", DisplayName(p, "odd"))
}
