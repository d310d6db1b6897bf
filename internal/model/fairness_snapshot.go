package model

// FairnessSnapshot 按 (examCode, subject, group) 的滚动聚合。
// 平均值 = OutcomeSum / SampleCount，增量更新。
// swagger:model
type FairnessSnapshot struct {
	BaseModel
	ExamCode    string  `gorm:"uniqueIndex:idx_fairness_key;size:32;not null" json:"examCode"`
	Subject     string  `gorm:"uniqueIndex:idx_fairness_key;size:32;not null" json:"subject"`
	GroupCode   string  `gorm:"uniqueIndex:idx_fairness_key;size:32;not null" json:"group"`
	OutcomeSum  float64 `gorm:"not null" json:"-"`
	SampleCount int64   `gorm:"not null" json:"sampleCount"`
}

func (s *FairnessSnapshot) Average() float64 {
	if s.SampleCount == 0 {
		return 0
	}
	return s.OutcomeSum / float64(s.SampleCount)
}
