// Package engine 是知识追踪引擎的纯计算核心：BKT 更新、迁移、负载估计、
// 时间分配、温度标定和公平性聚合。全部为确定性纯函数，状态由调用方持久化。
package engine

import (
	"fmt"
	"math"
	"time"

	"examprep_backend/internal/util"
)

// epsilon 除法前对 p 的钳制边界，避免 0/0 退化
const epsilon = 1e-6

// maxEffectiveSum 压力放大后 slip+guess 的上界，保证后验仍然自洽
const maxEffectiveSum = 0.95

// Params 单个概念的 BKT 参数
type Params struct {
	Learn  float64
	Slip   float64
	Guess  float64
	Forget float64
}

// Validate 参数必须都是概率，且 slip+guess < 1，否则模型不可辨识。
func (p Params) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"learn_rate", p.Learn},
		{"slip_rate", p.Slip},
		{"guess_rate", p.Guess},
		{"forgetting_rate", p.Forget},
	} {
		if v.value < 0 || v.value > 1 || math.IsNaN(v.value) {
			return &util.ConfigurationError{Detail: fmt.Sprintf("%s=%v outside [0,1]", v.name, v.value)}
		}
	}
	if p.Slip+p.Guess >= 1 {
		return &util.ConfigurationError{
			Detail: fmt.Sprintf("slip(%v)+guess(%v) >= 1, parameters inconsistent", p.Slip, p.Guess),
		}
	}
	return nil
}

// WithStress 压力升高时按比例抬高有效 slip/guess（更易失手、更多靠猜）。
// 抬高后的和被钳制在 maxEffectiveSum 以内，但有效值永不低于基准值——
// 基准和已在 (maxEffectiveSum, 1) 区间时归一化不得把压力下的参数压回基准之下。
// learn/forget 不受压力影响。
func (p Params) WithStress(stress, gain float64) Params {
	if gain <= 0 || stress <= 0 {
		return p
	}
	scale := 1 + gain*Clamp01(stress)
	s := p.Slip * scale
	g := p.Guess * scale
	if sum := s + g; sum > maxEffectiveSum {
		f := maxEffectiveSum / sum
		s *= f
		g *= f
	}
	if s < p.Slip {
		s = p.Slip
	}
	if g < p.Guess {
		g = p.Guess
	}
	return Params{Learn: p.Learn, Slip: s, Guess: g, Forget: p.Forget}
}

// Update 标准 BKT 后验 + 学习转移。纯函数，不触碰外部状态。
// 先验 p 在除法前钳制到 [ε, 1-ε]。
func Update(p float64, params Params, correct bool) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, &util.ValidationError{Field: "mastery", Detail: fmt.Sprintf("%v outside [0,1]", p)}
	}

	p = clampOpen(p)

	var pObs float64
	if correct {
		pObs = p * (1 - params.Slip) / (p*(1-params.Slip) + (1-p)*params.Guess)
	} else {
		pObs = p * params.Slip / (p*params.Slip + (1-p)*(1-params.Guess))
	}

	// 无论对错，本次尝试都有 learn_rate 的概率发生学习
	posterior := pObs + (1-pObs)*params.Learn
	return Clamp01(posterior), nil
}

// PredictCorrect 给定当前掌握度，模型对"答对"的原始置信度。标定日志用。
func PredictCorrect(p float64, params Params) float64 {
	p = clampOpen(p)
	return Clamp01(p*(1-params.Slip) + (1-p)*params.Guess)
}

// Decay 依据遗忘率把掌握度向先验指数回归。elapsed 为距上次练习的时长。
func Decay(p, prior, forgetRate float64, elapsed time.Duration) float64 {
	if forgetRate <= 0 || elapsed <= 0 {
		return p
	}
	days := elapsed.Hours() / 24
	return Clamp01(prior + (p-prior)*math.Exp(-forgetRate*days))
}

// RecoveryConfig 恢复信号阈值。floor 以下且连错 streak 次则触发。
type RecoveryConfig struct {
	Floor  float64
	Streak int
}

// RecoveryTriggered 引擎只发出信号，降低难度由选题方执行。
func RecoveryTriggered(mastery float64, consecutiveIncorrect int, cfg RecoveryConfig) bool {
	if cfg.Streak <= 0 {
		return false
	}
	return mastery < cfg.Floor && consecutiveIncorrect >= cfg.Streak
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampOpen(v float64) float64 {
	if v < epsilon {
		return epsilon
	}
	if v > 1-epsilon {
		return 1 - epsilon
	}
	return v
}
