package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep_backend/internal/util"
)

func TestAllocateHardCapPerExam(t *testing.T) {
	caps := map[string]int{
		"NEET":         90000,
		"JEE_Mains":    180000,
		"JEE_Advanced": 240000,
	}
	// 极端输入也绝不越过各考试的硬上限
	for exam, cap := range caps {
		out, err := Allocate(AllocationInput{
			BaseMs:     cap * 4,
			Stress:     1,
			Fatigue:    1,
			Mastery:    0,
			Difficulty: 1,
			CapMs:      cap,
		})
		require.NoError(t, err, exam)
		assert.Equal(t, cap, out.FinalMs, exam)
		assert.True(t, out.Capped, exam)
	}
}

func TestAllocateMonotonicity(t *testing.T) {
	base := AllocationInput{BaseMs: 60000, Stress: 0.3, Fatigue: 0.2, Mastery: 0.5, Difficulty: 0.5, CapMs: 240000}

	ref, err := Allocate(base)
	require.NoError(t, err)

	moreStress := base
	moreStress.Stress = 0.8
	got, err := Allocate(moreStress)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.FinalMs, ref.FinalMs)

	harder := base
	harder.Difficulty = 0.9
	got, err = Allocate(harder)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.FinalMs, ref.FinalMs)

	mastered := base
	mastered.Mastery = 0.95
	got, err = Allocate(mastered)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.FinalMs, ref.FinalMs)
}

func TestAllocateBreakdownConsistent(t *testing.T) {
	out, err := Allocate(AllocationInput{BaseMs: 60000, Stress: 0.4, Fatigue: 0.1, Mastery: 0.6, Difficulty: 0.7, CapMs: 240000})
	require.NoError(t, err)
	require.Len(t, out.Adjustments, 4)

	// 未触顶时最后一步的中间值就是最终时长
	assert.False(t, out.Capped)
	assert.Equal(t, out.Adjustments[len(out.Adjustments)-1].AfterMs, out.FinalMs)

	names := []string{"difficulty", "mastery", "stress", "fatigue"}
	for i, adj := range out.Adjustments {
		assert.Equal(t, names[i], adj.Name)
		assert.Greater(t, adj.Factor, 0.0)
	}
}

func TestAllocateValidation(t *testing.T) {
	_, err := Allocate(AllocationInput{BaseMs: 0, CapMs: 90000})
	assert.True(t, util.IsValidationError(err))

	_, err = Allocate(AllocationInput{BaseMs: 60000, CapMs: 0})
	assert.True(t, util.IsValidationError(err))

	_, err = Allocate(AllocationInput{BaseMs: 60000, CapMs: 90000, Stress: 1.4})
	assert.True(t, util.IsValidationError(err))
}
