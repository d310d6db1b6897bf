package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFairnessReportDisparity(t *testing.T) {
	stats := []GroupStat{
		{Group: "urban", Average: 0.62, Count: 100},
		{Group: "rural", Average: 0.50, Count: 80},
	}
	rep := BuildFairnessReport(stats, 0.08, 30)
	assert.InDelta(t, 0.12, rep.Disparity, 1e-9)
	assert.True(t, rep.Flagged)
}

func TestBuildFairnessReportBelowThreshold(t *testing.T) {
	stats := []GroupStat{
		{Group: "a", Average: 0.55, Count: 100},
		{Group: "b", Average: 0.52, Count: 100},
	}
	rep := BuildFairnessReport(stats, 0.08, 30)
	assert.InDelta(t, 0.03, rep.Disparity, 1e-9)
	assert.False(t, rep.Flagged)
}

func TestBuildFairnessReportExcludesSmallGroups(t *testing.T) {
	stats := []GroupStat{
		{Group: "big_a", Average: 0.60, Count: 200},
		{Group: "big_b", Average: 0.58, Count: 150},
		{Group: "tiny", Average: 0.05, Count: 4},
	}
	rep := BuildFairnessReport(stats, 0.08, 30)

	// 小样本组不进差异度，但仍出现在报告里
	assert.InDelta(t, 0.02, rep.Disparity, 1e-9)
	assert.False(t, rep.Flagged)
	assert.False(t, rep.Included["tiny"])
	assert.True(t, rep.Included["big_a"])
	assert.Len(t, rep.Groups, 3)
}

func TestBuildFairnessReportSingleGroup(t *testing.T) {
	rep := BuildFairnessReport([]GroupStat{{Group: "only", Average: 0.7, Count: 500}}, 0.08, 30)
	assert.Equal(t, 0.0, rep.Disparity)
	assert.False(t, rep.Flagged)
}

func TestBuildFairnessReportSortedByGroup(t *testing.T) {
	rep := BuildFairnessReport([]GroupStat{
		{Group: "z", Average: 0.5, Count: 50},
		{Group: "a", Average: 0.5, Count: 50},
	}, 0.08, 30)
	assert.Equal(t, "a", rep.Groups[0].Group)
	assert.Equal(t, "z", rep.Groups[1].Group)
}
