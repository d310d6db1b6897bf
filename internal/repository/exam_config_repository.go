package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"examprep_backend/internal/model"
)

// ExamConfigRepository 考试维度配置（时间硬上限等），管理端维护。
type ExamConfigRepository struct {
	DB *gorm.DB
}

func NewExamConfigRepository(db *gorm.DB) *ExamConfigRepository {
	return &ExamConfigRepository{DB: db}
}

func (r *ExamConfigRepository) GetByCode(ctx context.Context, examCode string) (*model.ExamConfig, error) {
	var cfg model.ExamConfig
	err := r.DB.WithContext(ctx).Where("exam_code = ?", examCode).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ExamConfigRepository) Upsert(ctx context.Context, cfg *model.ExamConfig) error {
	var existing model.ExamConfig
	err := r.DB.WithContext(ctx).Where("exam_code = ?", cfg.ExamCode).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.DB.WithContext(ctx).Create(cfg).Error
	}
	if err != nil {
		return err
	}
	existing.Name = cfg.Name
	existing.MaxQuestionTimeMs = cfg.MaxQuestionTimeMs
	existing.DefaultQuestionTimeMs = cfg.DefaultQuestionTimeMs
	if err := r.DB.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*cfg = existing
	return nil
}

func (r *ExamConfigRepository) List(ctx context.Context) ([]model.ExamConfig, error) {
	var configs []model.ExamConfig
	if err := r.DB.WithContext(ctx).Order("exam_code").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}
