package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"examprep_backend/internal/model"
)

// FairnessRepository 按 (exam, subject, group) 的滚动聚合快照。
type FairnessRepository struct {
	DB *gorm.DB
}

func NewFairnessRepository(db *gorm.DB) *FairnessRepository {
	return &FairnessRepository{DB: db}
}

// Record 增量累加一条样本。事务 + 行锁保证并发记录不丢计数。
func (r *FairnessRepository) Record(ctx context.Context, examCode, subject, group string, outcome float64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snap model.FairnessSnapshot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("exam_code = ? AND subject = ? AND group_code = ?", examCode, subject, group).
			First(&snap).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			snap = model.FairnessSnapshot{
				ExamCode:    examCode,
				Subject:     subject,
				GroupCode:   group,
				OutcomeSum:  outcome,
				SampleCount: 1,
			}
			return tx.Create(&snap).Error
		}
		if err != nil {
			return err
		}

		snap.OutcomeSum += outcome
		snap.SampleCount++
		return tx.Save(&snap).Error
	})
}

func (r *FairnessRepository) ListByExamSubject(ctx context.Context, examCode, subject string) ([]model.FairnessSnapshot, error) {
	var snaps []model.FairnessSnapshot
	err := r.DB.WithContext(ctx).
		Where("exam_code = ? AND subject = ?", examCode, subject).
		Order("group_code").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// DistinctKeys 所有出现过的 (exam, subject) 组合，周期扫描用
func (r *FairnessRepository) DistinctKeys(ctx context.Context) ([]model.FairnessSnapshot, error) {
	var keys []model.FairnessSnapshot
	err := r.DB.WithContext(ctx).
		Model(&model.FairnessSnapshot{}).
		Select("DISTINCT exam_code, subject").
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
