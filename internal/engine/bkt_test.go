package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep_backend/internal/util"
)

func TestUpdateWorkedExample(t *testing.T) {
	// p=0.25, L=0.3, S=0.1, G=0.2, 答对:
	// p_obs = 0.25*0.9/(0.25*0.9+0.75*0.2) = 0.6, p' = 0.6 + 0.4*0.3 = 0.72
	p, err := Update(0.25, Params{Learn: 0.3, Slip: 0.1, Guess: 0.2}, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.72, p, 1e-9)
}

func TestUpdateStaysInUnitInterval(t *testing.T) {
	params := []Params{
		{Learn: 0.3, Slip: 0.1, Guess: 0.2},
		{Learn: 0.0, Slip: 0.0, Guess: 0.0},
		{Learn: 1.0, Slip: 0.45, Guess: 0.45},
		{Learn: 0.05, Slip: 0.3, Guess: 0.6},
	}
	priors := []float64{0, 1e-9, 0.25, 0.5, 0.99, 1}
	for _, pr := range params {
		for _, p0 := range priors {
			for _, correct := range []bool{true, false} {
				p1, err := Update(p0, pr, correct)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, p1, 0.0)
				assert.LessOrEqual(t, p1, 1.0)
			}
		}
	}
}

func TestUpdateCorrectBeatsIncorrect(t *testing.T) {
	pr := Params{Learn: 0.2, Slip: 0.1, Guess: 0.25}
	for _, p0 := range []float64{0.1, 0.25, 0.5, 0.8} {
		up, err := Update(p0, pr, true)
		require.NoError(t, err)
		down, err := Update(p0, pr, false)
		require.NoError(t, err)
		assert.Greater(t, up, down, "prior %v", p0)
	}
}

func TestUpdateRejectsInconsistentParams(t *testing.T) {
	_, err := Update(0.5, Params{Learn: 0.2, Slip: 0.6, Guess: 0.5}, true)
	require.Error(t, err)
	assert.True(t, util.IsConfigurationError(err))

	_, err = Update(0.5, Params{Learn: 1.2, Slip: 0.1, Guess: 0.1}, true)
	require.Error(t, err)
	assert.True(t, util.IsConfigurationError(err))
}

func TestUpdateRejectsOutOfRangeMastery(t *testing.T) {
	_, err := Update(1.5, Params{Learn: 0.2, Slip: 0.1, Guess: 0.2}, true)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))
}

func TestUpdateDegenerateExtremesNoNaN(t *testing.T) {
	pr := Params{Learn: 0.1, Slip: 0.0, Guess: 0.0}
	// p=0 答对 / p=1 答错都会在未钳制时除零
	p, err := Update(0, pr, true)
	require.NoError(t, err)
	assert.False(t, p != p) // NaN check
	p, err = Update(1, pr, false)
	require.NoError(t, err)
	assert.False(t, p != p)
}

func TestWithStressBoundedAndMonotone(t *testing.T) {
	base := Params{Learn: 0.3, Slip: 0.4, Guess: 0.4}
	calm := base.WithStress(0, 0.5)
	assert.Equal(t, base, calm)

	stressed := base.WithStress(1, 0.5)
	assert.GreaterOrEqual(t, stressed.Slip, base.Slip)
	assert.GreaterOrEqual(t, stressed.Guess, base.Guess)
	assert.Less(t, stressed.Slip+stressed.Guess, 1.0)
	require.NoError(t, stressed.Validate())

	// learn/forget 不受影响
	assert.Equal(t, base.Learn, stressed.Learn)
	assert.Equal(t, base.Forget, stressed.Forget)
}

func TestWithStressNeverBelowBaseNearUnitSum(t *testing.T) {
	// 基准和已在归一化上限之上（0.95 < 0.98 < 1）：缩放回来也不得低于基准
	base := Params{Learn: 0.2, Slip: 0.5, Guess: 0.48}
	require.NoError(t, base.Validate())

	for _, stress := range []float64{0.1, 0.5, 1} {
		stressed := base.WithStress(stress, 0.5)
		assert.GreaterOrEqual(t, stressed.Slip, base.Slip, "stress=%v", stress)
		assert.GreaterOrEqual(t, stressed.Guess, base.Guess, "stress=%v", stress)
		assert.Less(t, stressed.Slip+stressed.Guess, 1.0, "stress=%v", stress)
	}
}

func TestDecayTowardPrior(t *testing.T) {
	p := Decay(0.9, 0.25, 0.1, 30*24*time.Hour)
	assert.Less(t, p, 0.9)
	assert.Greater(t, p, 0.25)

	// 无遗忘或无时间间隔则不变
	assert.Equal(t, 0.9, Decay(0.9, 0.25, 0, time.Hour))
	assert.Equal(t, 0.9, Decay(0.9, 0.25, 0.1, 0))
}

func TestRecoveryTriggered(t *testing.T) {
	cfg := RecoveryConfig{Floor: 0.3, Streak: 3}
	assert.False(t, RecoveryTriggered(0.5, 5, cfg))
	assert.False(t, RecoveryTriggered(0.2, 2, cfg))
	assert.True(t, RecoveryTriggered(0.2, 3, cfg))
	assert.True(t, RecoveryTriggered(0.29, 4, cfg))
}

func TestPredictCorrect(t *testing.T) {
	// p=0.5, S=0.1, G=0.2 → 0.5*0.9 + 0.5*0.2 = 0.55
	assert.InDelta(t, 0.55, PredictCorrect(0.5, Params{Slip: 0.1, Guess: 0.2}), 1e-9)
}
