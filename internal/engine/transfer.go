package engine

// TransferDelta 概念 A 的掌握变化向相邻概念 B 的阻尼传递量。
// weight 来自迁移图的边权，factor < 1 防止链式放大。
// 传递只做一跳，由调用方保证不沿图传递（环因此无害）。
func TransferDelta(weight, masteryDelta, factor float64) float64 {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return weight * masteryDelta * factor
}

// ApplyTransfer 把传递量加到邻居概念的掌握度上并钳制。
func ApplyTransfer(neighborMastery, weight, masteryDelta, factor float64) float64 {
	return Clamp01(neighborMastery + TransferDelta(weight, masteryDelta, factor))
}
