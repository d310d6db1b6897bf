package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"examprep_backend/internal/model"
)

// CalibrationRepository 按 (examCode, subject) 键存取温度标定。
type CalibrationRepository struct {
	DB *gorm.DB
}

func NewCalibrationRepository(db *gorm.DB) *CalibrationRepository {
	return &CalibrationRepository{DB: db}
}

// Get 未标定的键返回 (nil, nil)，调用方落到默认温度 1。
func (r *CalibrationRepository) Get(ctx context.Context, examCode, subject string) (*model.CalibrationEntry, error) {
	var entry model.CalibrationEntry
	err := r.DB.WithContext(ctx).
		Where("exam_code = ? AND subject = ?", examCode, subject).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert 只改写目标键，绝不触碰其它 (exam, subject)。
func (r *CalibrationRepository) Upsert(ctx context.Context, examCode, subject string, temperature float64, sampleSize int) (*model.CalibrationEntry, error) {
	var entry model.CalibrationEntry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("exam_code = ? AND subject = ?", examCode, subject).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = model.CalibrationEntry{
				ExamCode:    examCode,
				Subject:     subject,
				Temperature: temperature,
				SampleSize:  sampleSize,
				FittedAt:    time.Now(),
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}
		entry.Temperature = temperature
		entry.SampleSize = sampleSize
		entry.FittedAt = time.Now()
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CalibrationRepository) List(ctx context.Context) ([]model.CalibrationEntry, error) {
	var entries []model.CalibrationEntry
	if err := r.DB.WithContext(ctx).Order("exam_code, subject").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
