package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"examprep_backend/internal/model"
)

// KnowledgeStateRepository Knowledge State Store。每个 (student, concept)
// 唯一一行，首次交互按给定先验惰性创建。
type KnowledgeStateRepository struct {
	DB *gorm.DB
}

func NewKnowledgeStateRepository(db *gorm.DB) *KnowledgeStateRepository {
	return &KnowledgeStateRepository{DB: db}
}

func (r *KnowledgeStateRepository) Get(ctx context.Context, studentID, conceptID string) (*model.KnowledgeState, error) {
	var state model.KnowledgeState
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND concept_id = ?", studentID, conceptID).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// newStateAtPrior 首次交互的初始行：掌握度等于概念先验，练习计数从零起。
func newStateAtPrior(studentID, conceptID string, prior float64) model.KnowledgeState {
	return model.KnowledgeState{
		StudentID:     studentID,
		ConceptID:     conceptID,
		Mastery:       prior,
		LastPracticed: time.Now(),
	}
}

// applyStateMutation 执行变更并维持 practice_count 单调不减；
// 变更报错时状态回到调用前的值。
func applyStateMutation(state *model.KnowledgeState, mutate func(*model.KnowledgeState) error) error {
	snapshot := *state
	if err := mutate(state); err != nil {
		*state = snapshot
		return err
	}
	if state.PracticeCount < snapshot.PracticeCount {
		state.PracticeCount = snapshot.PracticeCount
	}
	return nil
}

// UpdateAtomic 对单个 (student, concept) 执行原子读改写：事务内行锁
// (SELECT ... FOR UPDATE)，行不存在则按 prior 创建后再锁定修改。
// 并发提交同一键时串行化，避免丢更新；不同学生互不阻塞。
func (r *KnowledgeStateRepository) UpdateAtomic(
	ctx context.Context,
	studentID, conceptID string,
	prior float64,
	mutate func(state *model.KnowledgeState) error,
) (*model.KnowledgeState, error) {
	var result *model.KnowledgeState

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state model.KnowledgeState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND concept_id = ?", studentID, conceptID).
			First(&state).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = newStateAtPrior(studentID, conceptID, prior)
			if err := tx.Create(&state).Error; err != nil {
				return err
			}
			// 创建后重新锁定，保证与并发创建者串行
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("student_id = ? AND concept_id = ?", studentID, conceptID).
				First(&state).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := applyStateMutation(&state, mutate); err != nil {
			return err
		}

		if err := tx.Save(&state).Error; err != nil {
			return err
		}
		result = &state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *KnowledgeStateRepository) ListByStudent(ctx context.Context, studentID string) ([]model.KnowledgeState, error) {
	var states []model.KnowledgeState
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("concept_id").
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}
