package engine

import "sort"

// GroupStat 单个人群分组的滚动聚合
type GroupStat struct {
	Group   string
	Average float64
	Count   int64
}

// FairnessReport 分组均值、差异度（纳入组 max-min）与越线标记
type FairnessReport struct {
	Groups    []GroupStat
	Included  map[string]bool
	Disparity float64
	Flagged   bool
}

// BuildFairnessReport 样本量不足 minSamples 的组仍然报告原始计数，
// 但不参与差异度计算，避免小样本噪声误报。
func BuildFairnessReport(stats []GroupStat, threshold float64, minSamples int64) FairnessReport {
	sorted := make([]GroupStat, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Group < sorted[j].Group })

	included := make(map[string]bool, len(sorted))
	var minAvg, maxAvg float64
	n := 0
	for _, s := range sorted {
		if s.Count < minSamples {
			continue
		}
		included[s.Group] = true
		if n == 0 || s.Average < minAvg {
			minAvg = s.Average
		}
		if n == 0 || s.Average > maxAvg {
			maxAvg = s.Average
		}
		n++
	}

	disparity := 0.0
	if n >= 2 {
		disparity = maxAvg - minAvg
	}

	return FairnessReport{
		Groups:    sorted,
		Included:  included,
		Disparity: disparity,
		Flagged:   threshold > 0 && disparity > threshold,
	}
}
