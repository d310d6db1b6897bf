package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseSignals() Signals {
	return Signals{
		ResponseTimeMs:    45000,
		ExpectedTimeMs:    30000,
		HesitationMs:      5000,
		KeystrokeVariance: 0.3,
		DeviceType:        "desktop",
		NetworkQuality:    0.9,
		SessionMinutes:    40,
		ProblemComplexity: 0.6,
	}
}

func TestEstimateLoadDeterministic(t *testing.T) {
	a := EstimateLoad(baseSignals(), 0.8)
	b := EstimateLoad(baseSignals(), 0.8)
	assert.Equal(t, a, b)
}

func TestEstimateLoadBounds(t *testing.T) {
	extremes := []Signals{
		{},
		{ResponseTimeMs: 1 << 30, ExpectedTimeMs: 1, HesitationMs: 1 << 30, KeystrokeVariance: 5,
			DeviceType: "mobile", NetworkQuality: -2, SessionMinutes: 10000, ProblemComplexity: 3},
	}
	for _, sig := range extremes {
		est := EstimateLoad(sig, 0.8)
		for _, v := range []float64{est.Stress, est.IntrinsicLoad, est.ExtraneousLoad, est.TotalLoad} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestMobileStrictlyIncreasesExtraneousLoad(t *testing.T) {
	desktop := baseSignals()
	mobile := baseSignals()
	mobile.DeviceType = "mobile"

	de := EstimateLoad(desktop, 0.8)
	me := EstimateLoad(mobile, 0.8)
	assert.Greater(t, me.ExtraneousLoad, de.ExtraneousLoad)
	// 其余输出里压力与内在负载不受设备影响
	assert.Equal(t, de.Stress, me.Stress)
	assert.Equal(t, de.IntrinsicLoad, me.IntrinsicLoad)
}

func TestOverloadRisk(t *testing.T) {
	sig := baseSignals()
	sig.ProblemComplexity = 1
	sig.DeviceType = "mobile"
	sig.NetworkQuality = 0
	sig.HesitationMs = 60000

	est := EstimateLoad(sig, 0.8)
	assert.True(t, est.OverloadRisk)

	light := EstimateLoad(Signals{DeviceType: "desktop", NetworkQuality: 1}, 0.8)
	assert.False(t, light.OverloadRisk)
}

func TestFatigueSaturates(t *testing.T) {
	assert.Equal(t, 0.0, Fatigue(0))
	assert.InDelta(t, 0.5, Fatigue(45), 1e-9)
	assert.Equal(t, 1.0, Fatigue(500))
}
