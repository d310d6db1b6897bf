package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examprep_backend/internal/model"
)

// InteractionEventRepository 追加式事件日志。只有 Append 写入，任何路径都
// 不修改已有事件。
type InteractionEventRepository struct {
	DB *gorm.DB
}

func NewInteractionEventRepository(db *gorm.DB) *InteractionEventRepository {
	return &InteractionEventRepository{DB: db}
}

func (r *InteractionEventRepository) Append(ctx context.Context, event *model.InteractionEvent) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

// ListByExamSubject 离线校准拟合的取数窗口
func (r *InteractionEventRepository) ListByExamSubject(ctx context.Context, examCode, subject string, since time.Time) ([]model.InteractionEvent, error) {
	var events []model.InteractionEvent
	err := r.DB.WithContext(ctx).
		Where("exam_code = ? AND subject = ? AND created_at >= ?", examCode, subject, since).
		Order("created_at").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DistinctExamSubjects 事件日志中出现过的 (exam, subject) 组合
func (r *InteractionEventRepository) DistinctExamSubjects(ctx context.Context, since time.Time) ([]model.InteractionEvent, error) {
	var keys []model.InteractionEvent
	err := r.DB.WithContext(ctx).
		Model(&model.InteractionEvent{}).
		Select("DISTINCT exam_code, subject").
		Where("created_at >= ? AND exam_code <> '' AND subject <> ''", since).
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *InteractionEventRepository) PageByStudent(ctx context.Context, studentID string, page, limit int) ([]model.InteractionEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&model.InteractionEvent{}).Where("student_id = ?", studentID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []model.InteractionEvent
	err := base.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
