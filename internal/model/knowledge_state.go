package model

import "time"

// KnowledgeState 每个 (student, concept) 唯一的掌握状态。
// 首次交互时以较低先验惰性创建，每次作答只在一次原子读改写中更新。
// swagger:model
type KnowledgeState struct {
	BaseModel
	StudentID            string    `gorm:"uniqueIndex:idx_student_concept;size:64;not null" json:"studentId"`
	ConceptID            string    `gorm:"uniqueIndex:idx_student_concept;size:64;not null" json:"conceptId"`
	Mastery              float64   `gorm:"not null" json:"mastery"`
	PracticeCount        int       `gorm:"not null;default:0" json:"practiceCount"`
	ConsecutiveIncorrect int       `gorm:"not null;default:0" json:"consecutiveIncorrect"`
	LastPracticed        time.Time `json:"lastPracticed"`
}
