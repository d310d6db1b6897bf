package engine

import "strings"

// Signals 负载/压力估计的行为输入。估计器无内部状态，同样的输入永远给出
// 同样的输出。
type Signals struct {
	ResponseTimeMs    int
	ExpectedTimeMs    int
	HesitationMs      int
	KeystrokeVariance float64 // 0..1，已归一化
	DeviceType        string  // desktop / tablet / mobile
	NetworkQuality    float64 // 0..1，1 为最好
	SessionMinutes    float64
	ProblemComplexity float64 // 0..1
}

// LoadEstimate 两类有界标量：压力与认知负载（内在/外在/总）。
type LoadEstimate struct {
	Stress         float64
	IntrinsicLoad  float64
	ExtraneousLoad float64
	TotalLoad      float64
	OverloadRisk   bool
}

// 设备附加的外在负载。移动端在完全相同的其余信号下必须严格高于桌面端。
const (
	deviceLoadDesktop = 0.0
	deviceLoadTablet  = 0.10
	deviceLoadMobile  = 0.20
)

// 各信号在压力合成中的权重
const (
	stressWeightOverrun    = 0.40
	stressWeightHesitation = 0.25
	stressWeightKeystroke  = 0.20
	stressWeightFatigue    = 0.15
)

// hesitationScaleMs 犹豫时长的饱和点
const hesitationScaleMs = 30000

// fatigueSaturationMins 会话时长多久算满疲劳
const fatigueSaturationMins = 90

// EstimateLoad 由行为信号确定性地导出压力与负载。
// overloadThreshold 之上 OverloadRisk 置位，下游应倾向降低难度。
func EstimateLoad(sig Signals, overloadThreshold float64) LoadEstimate {
	overrun := 0.0
	if sig.ExpectedTimeMs > 0 && sig.ResponseTimeMs > sig.ExpectedTimeMs {
		ratio := float64(sig.ResponseTimeMs) / float64(sig.ExpectedTimeMs)
		// 2 倍预期时间 → 0.5，3 倍及以上 → 1
		overrun = Clamp01((ratio - 1) / 2)
	}

	hesitation := Clamp01(float64(sig.HesitationMs) / hesitationScaleMs)
	fatigue := Fatigue(sig.SessionMinutes)
	keystroke := Clamp01(sig.KeystrokeVariance)

	stress := Clamp01(stressWeightOverrun*overrun +
		stressWeightHesitation*hesitation +
		stressWeightKeystroke*keystroke +
		stressWeightFatigue*fatigue)

	intrinsic := Clamp01(sig.ProblemComplexity)

	network := Clamp01(sig.NetworkQuality)
	extraneous := Clamp01(deviceLoad(sig.DeviceType) + 0.3*(1-network) + 0.2*hesitation)

	total := Clamp01(0.6*intrinsic + 0.4*extraneous + 0.2*stress)

	return LoadEstimate{
		Stress:         stress,
		IntrinsicLoad:  intrinsic,
		ExtraneousLoad: extraneous,
		TotalLoad:      total,
		OverloadRisk:   overloadThreshold > 0 && total > overloadThreshold,
	}
}

// Fatigue 会话时长到疲劳标量的映射，fatigueSaturationMins 处饱和。
func Fatigue(sessionMinutes float64) float64 {
	if sessionMinutes <= 0 {
		return 0
	}
	return Clamp01(sessionMinutes / fatigueSaturationMins)
}

func deviceLoad(device string) float64 {
	switch strings.ToLower(device) {
	case "mobile":
		return deviceLoadMobile
	case "tablet":
		return deviceLoadTablet
	default:
		return deviceLoadDesktop
	}
}
