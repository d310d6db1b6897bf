package model

import "time"

// CalibrationEntry 按 (examCode, subject) 存储的温度标定。
// swagger:model
type CalibrationEntry struct {
	BaseModel
	ExamCode    string    `gorm:"uniqueIndex:idx_calibration_key;size:32;not null" json:"examCode"`
	Subject     string    `gorm:"uniqueIndex:idx_calibration_key;size:32;not null" json:"subject"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	SampleSize  int       `gorm:"not null" json:"sampleSize"`
	FittedAt    time.Time `json:"fittedAt"`
}
