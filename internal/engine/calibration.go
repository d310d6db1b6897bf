package engine

import (
	"fmt"
	"math"

	"examprep_backend/internal/util"
)

// 温度搜索区间。完全可分的数据 NLL 在 T→上界 处单调变好，
// 搜索收敛到上界并返回有限温度。
const (
	temperatureMin = 0.05
	temperatureMax = 20.0
)

// FitTemperature 对 (logit, label) 批量拟合单个温度标量，最小化
// sigmoid(logit/T) 下标签的负对数似然。黄金分割搜索，单峰区间内收敛。
// 长度不一致 → ValidationError；标签单一类别 → DegenerateCalibrationError。
func FitTemperature(logits []float64, labels []int) (float64, error) {
	if len(logits) != len(labels) {
		return 0, &util.ValidationError{
			Field:  "labels",
			Detail: fmt.Sprintf("length %d does not match logits length %d", len(labels), len(logits)),
		}
	}
	if len(logits) == 0 {
		return 0, &util.ValidationError{Field: "logits", Detail: "empty batch"}
	}

	positives := 0
	for _, y := range labels {
		if y != 0 && y != 1 {
			return 0, &util.ValidationError{Field: "labels", Detail: fmt.Sprintf("label %d is not binary", y)}
		}
		positives += y
	}
	if positives == 0 || positives == len(labels) {
		return 0, &util.DegenerateCalibrationError{
			Detail: fmt.Sprintf("all %d labels in a single class, temperature undefined", len(labels)),
		}
	}

	nll := func(t float64) float64 {
		sum := 0.0
		for i, l := range logits {
			p := sigmoid(l / t)
			p = clampOpen(p)
			if labels[i] == 1 {
				sum -= math.Log(p)
			} else {
				sum -= math.Log(1 - p)
			}
		}
		return sum
	}

	t := goldenSection(nll, temperatureMin, temperatureMax)
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return 0, &util.DegenerateCalibrationError{Detail: "temperature search diverged"}
	}
	return t, nil
}

// ApplyTemperature 把原始概率分数换算成标定概率。T=1 恒等。
func ApplyTemperature(raw, temperature float64) float64 {
	if temperature == 1 || temperature <= 0 {
		return Clamp01(raw)
	}
	p := clampOpen(Clamp01(raw))
	logit := math.Log(p / (1 - p))
	return sigmoid(logit / temperature)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// goldenSection 在 [a,b] 上最小化 f，80 轮后区间宽度 < 1e-8
func goldenSection(f func(float64) float64, a, b float64) float64 {
	const phi = 0.6180339887498949
	x1 := b - phi*(b-a)
	x2 := a + phi*(b-a)
	f1, f2 := f(x1), f(x2)
	for i := 0; i < 80; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - phi*(b-a)
			f1 = f(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + phi*(b-a)
			f2 = f(x2)
		}
	}
	return (a + b) / 2
}
