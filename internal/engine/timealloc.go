package engine

import (
	"fmt"
	"math"

	"examprep_backend/internal/util"
)

// AllocationInput 时间分配的全部输入。CapMs 是考试维度的硬上限。
type AllocationInput struct {
	BaseMs     int
	Stress     float64
	Fatigue    float64
	Mastery    float64
	Difficulty float64
	CapMs      int
}

// Adjustment 单步乘法调整及其应用后的中间结果
type Adjustment struct {
	Name    string
	Factor  float64
	AfterMs int
}

// Allocation 最终时长与逐项分解。Capped 表示硬上限生效。
type Allocation struct {
	FinalMs     int
	CapMs       int
	Capped      bool
	Adjustments []Adjustment
}

// 各因素的调整强度。方向保证单调性：压力/难度只增时，掌握只减时。
const (
	difficultyGain = 0.50
	masteryGain    = 0.30
	stressGain     = 0.40
	fatigueGain    = 0.25
)

// Allocate 计算下一题的时间预算。所有乘法调整之后，硬上限最后钳制——
// 无论前面算出多大，绝不超过 CapMs。
func Allocate(in AllocationInput) (Allocation, error) {
	if in.BaseMs <= 0 {
		return Allocation{}, &util.ValidationError{Field: "baseMs", Detail: fmt.Sprintf("%d must be positive", in.BaseMs)}
	}
	if in.CapMs <= 0 {
		return Allocation{}, &util.ValidationError{Field: "capMs", Detail: fmt.Sprintf("%d must be positive", in.CapMs)}
	}
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"stress", in.Stress},
		{"fatigue", in.Fatigue},
		{"mastery", in.Mastery},
		{"difficulty", in.Difficulty},
	} {
		if v.value < 0 || v.value > 1 || math.IsNaN(v.value) {
			return Allocation{}, &util.ValidationError{Field: v.name, Detail: fmt.Sprintf("%v outside [0,1]", v.value)}
		}
	}

	current := float64(in.BaseMs)
	var steps []Adjustment

	apply := func(name string, factor float64) {
		current *= factor
		steps = append(steps, Adjustment{Name: name, Factor: factor, AfterMs: int(math.Round(current))})
	}

	apply("difficulty", 1+difficultyGain*in.Difficulty)
	apply("mastery", 1-masteryGain*in.Mastery)
	apply("stress", 1+stressGain*in.Stress)
	apply("fatigue", 1+fatigueGain*in.Fatigue)

	final := int(math.Round(current))
	capped := false
	if final > in.CapMs {
		final = in.CapMs
		capped = true
	}

	return Allocation{
		FinalMs:     final,
		CapMs:       in.CapMs,
		Capped:      capped,
		Adjustments: steps,
	}, nil
}
