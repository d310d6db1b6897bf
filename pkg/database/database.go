package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.ConceptParameter{},
		&model.KnowledgeState{},
		&model.InteractionEvent{},
		&model.CalibrationEntry{},
		&model.FairnessSnapshot{},
		&model.ExamConfig{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedExamConfigs(db)
	seedConceptParameters(db)

	return db, nil
}

// seedExamConfigs 默认考试配置。上限是考试规则的硬约束，部署后可在管理端调整。
func seedExamConfigs(db *gorm.DB) {
	var count int64
	db.Model(&model.ExamConfig{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.ExamConfig{
		{ExamCode: "NEET", Name: "NEET UG", MaxQuestionTimeMs: 90000, DefaultQuestionTimeMs: 60000},
		{ExamCode: "JEE_Mains", Name: "JEE Main", MaxQuestionTimeMs: 180000, DefaultQuestionTimeMs: 120000},
		{ExamCode: "JEE_Advanced", Name: "JEE Advanced", MaxQuestionTimeMs: 240000, DefaultQuestionTimeMs: 150000},
	}
	for i := range defaults {
		db.Create(&defaults[i])
	}
}

// seedConceptParameters 起步概念集，参数为经验初值，后续由校准流程迭代。
func seedConceptParameters(db *gorm.DB) {
	var count int64
	db.Model(&model.ConceptParameter{}).Count(&count)
	if count > 0 {
		return
	}

	starter := []model.ConceptParameter{
		{ConceptID: "kinematics", Subject: "physics", LearnRate: 0.3, SlipRate: 0.1, GuessRate: 0.2, ForgettingRate: 0.05},
		{ConceptID: "dynamics", Subject: "physics", LearnRate: 0.25, SlipRate: 0.12, GuessRate: 0.2, ForgettingRate: 0.05},
		{ConceptID: "thermodynamics", Subject: "physics", LearnRate: 0.22, SlipRate: 0.12, GuessRate: 0.25, ForgettingRate: 0.06},
		{ConceptID: "stoichiometry", Subject: "chemistry", LearnRate: 0.28, SlipRate: 0.1, GuessRate: 0.25, ForgettingRate: 0.05},
		{ConceptID: "chemical_bonding", Subject: "chemistry", LearnRate: 0.26, SlipRate: 0.11, GuessRate: 0.25, ForgettingRate: 0.05},
		{ConceptID: "cell_biology", Subject: "biology", LearnRate: 0.32, SlipRate: 0.08, GuessRate: 0.25, ForgettingRate: 0.07},
		{ConceptID: "genetics", Subject: "biology", LearnRate: 0.27, SlipRate: 0.1, GuessRate: 0.25, ForgettingRate: 0.06},
		{ConceptID: "calculus_limits", Subject: "mathematics", LearnRate: 0.24, SlipRate: 0.13, GuessRate: 0.15, ForgettingRate: 0.05},
		{ConceptID: "calculus_derivatives", Subject: "mathematics", LearnRate: 0.25, SlipRate: 0.12, GuessRate: 0.15, ForgettingRate: 0.05},
		{ConceptID: "probability", Subject: "mathematics", LearnRate: 0.26, SlipRate: 0.12, GuessRate: 0.2, ForgettingRate: 0.05},
	}
	for i := range starter {
		db.Create(&starter[i])
	}
}
