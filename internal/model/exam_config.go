package model

// ExamConfig 考试维度的硬性配置。MaxQuestionTimeMs 是时间分配的最终钳制上限。
// swagger:model
type ExamConfig struct {
	BaseModel
	ExamCode              string `gorm:"uniqueIndex;size:32;not null" json:"examCode"`
	Name                  string `gorm:"size:64" json:"name"`
	MaxQuestionTimeMs     int    `gorm:"not null" json:"maxQuestionTimeMs"`
	DefaultQuestionTimeMs int    `gorm:"not null" json:"defaultQuestionTimeMs"`
}
