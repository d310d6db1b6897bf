package model

// ConceptParameter BKT 概念参数。只由管理/校准流程修改，热路径只读。
// swagger:model
type ConceptParameter struct {
	BaseModel
	ConceptID      string  `gorm:"uniqueIndex;size:64;not null" json:"conceptId"`
	Subject        string  `gorm:"size:32;index" json:"subject"`
	LearnRate      float64 `gorm:"not null" json:"learnRate"`
	SlipRate       float64 `gorm:"not null" json:"slipRate"`
	GuessRate      float64 `gorm:"not null" json:"guessRate"`
	ForgettingRate float64 `gorm:"not null" json:"forgettingRate"`
}
