package model

// InteractionEvent 作答事件，只追加不修改。
// 公平性聚合与离线校准都以它为数据源。
// swagger:model
type InteractionEvent struct {
	UUIDBase
	StudentID      string  `gorm:"size:64;index;not null" json:"studentId"`
	ConceptID      string  `gorm:"size:64;index;not null" json:"conceptId"`
	ExamCode       string  `gorm:"size:32;index:idx_event_exam_subject" json:"examCode"`
	Subject        string  `gorm:"size:32;index:idx_event_exam_subject" json:"subject"`
	DemographicGrp string  `gorm:"size:32" json:"demographicGroup"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs int     `json:"responseTimeMs"`
	DeviceType     string  `gorm:"size:16" json:"deviceType"`
	NetworkQuality float64 `json:"networkQuality"`
	Stress         float64 `json:"stress"`
	TotalLoad      float64 `json:"totalLoad"`
	MasteryBefore  float64 `json:"masteryBefore"`
	MasteryAfter   float64 `json:"masteryAfter"`
	// 更新前模型给出的"本题答对"原始置信度，离线校准用
	RawConfidence float64 `json:"rawConfidence"`
}
