package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_DedupsAcrossDays(t *testing.T) {
	// 正常流程中不会出现跨星期重复，这里直接构造重叠的状态
	s := State{
		days: []string{"d1", "d2"},
		hours: map[string][]string{
			"d1": {"h1", "h2"},
			"d2": {"h2", "h3"},
		},
	}

	p := Normalize(s)
	assert.Equal(t, []string{"h1", "h2", "h3"}, p.HourIDs)
	assert.Equal(t, []string{"d1", "d2"}, p.Days)
	assert.Equal(t, s.DayHours(), p.DayHours)
}

func TestNormalize_FollowsSelectedDayOrder(t *testing.T) {
	s := State{
		days:  []string{"sat", "mon"},
		hours: map[string][]string{"mon": {"m1"}, "sat": {"s1", "s2"}},
	}

	assert.Equal(t, []string{"s1", "s2", "m1"}, Normalize(s).HourIDs)
}

func TestNormalize_EmptyState(t *testing.T) {
	p := Normalize(EmptyState())
	assert.Empty(t, p.HourIDs)
	assert.NotNil(t, p.HourIDs)
	assert.Empty(t, p.Days)
	assert.Empty(t, p.DayHours)
}

func TestNormalize_OutputIsDetachedFromState(t *testing.T) {
	s := State{days: []string{"mon"}, hours: map[string][]string{"mon": {"h1"}}}

	p := Normalize(s)
	p.DayHours["mon"][0] = "changed"
	p.Days[0] = "changed"

	assert.Equal(t, []string{"h1"}, s.HoursFor("mon"))
	assert.Equal(t, []string{"mon"}, s.SelectedDays())
}

func TestNewSubmission(t *testing.T) {
	p := Payload{HourIDs: []string{"h1"}, Days: []string{"mon"}, DayHours: map[string][]string{"mon": {"h1"}}}

	created := NewSubmission("张老师", true, "", p)
	assert.Nil(t, created.ID)
	assert.True(t, created.CategoryFlag)

	edited := NewSubmission("张老师", false, "t-1", p)
	if assert.NotNil(t, edited.ID) {
		assert.Equal(t, "t-1", *edited.ID)
	}
	assert.Equal(t, p.HourIDs, edited.HourIDs)
}
