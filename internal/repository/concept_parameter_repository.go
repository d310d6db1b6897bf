package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
)

const paramCacheKeyPrefix = "concept_param:"

// ConceptParameterRepository Parameter Store。热路径只读，带 Redis 读穿缓存；
// 写入只来自管理/校准流程，写后失效缓存。
type ConceptParameterRepository struct {
	DB       *gorm.DB
	RDB      *redis.Client
	CacheTTL time.Duration
}

func NewConceptParameterRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *ConceptParameterRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ConceptParameterRepository{DB: db, RDB: rdb, CacheTTL: cacheTTL}
}

func (r *ConceptParameterRepository) GetByConceptID(ctx context.Context, conceptID string) (*model.ConceptParameter, error) {
	cacheKey := paramCacheKeyPrefix + conceptID

	if r.RDB != nil {
		if raw, err := r.RDB.Get(ctx, cacheKey).Result(); err == nil {
			var cached model.ConceptParameter
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	var param model.ConceptParameter
	err := r.DB.WithContext(ctx).Where("concept_id = ?", conceptID).First(&param).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrConceptNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if raw, err := json.Marshal(&param); err == nil {
			r.RDB.Set(ctx, cacheKey, raw, r.CacheTTL)
		}
	}
	return &param, nil
}

func (r *ConceptParameterRepository) Upsert(ctx context.Context, param *model.ConceptParameter) error {
	var existing model.ConceptParameter
	err := r.DB.WithContext(ctx).Where("concept_id = ?", param.ConceptID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.DB.WithContext(ctx).Create(param).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		existing.Subject = param.Subject
		existing.LearnRate = param.LearnRate
		existing.SlipRate = param.SlipRate
		existing.GuessRate = param.GuessRate
		existing.ForgettingRate = param.ForgettingRate
		if err := r.DB.WithContext(ctx).Save(&existing).Error; err != nil {
			return err
		}
		*param = existing
	}

	if r.RDB != nil {
		r.RDB.Del(ctx, paramCacheKeyPrefix+param.ConceptID)
	}
	return nil
}

func (r *ConceptParameterRepository) List(ctx context.Context, subject string) ([]model.ConceptParameter, error) {
	var params []model.ConceptParameter
	q := r.DB.WithContext(ctx).Order("concept_id")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if err := q.Find(&params).Error; err != nil {
		return nil, fmt.Errorf("list concept parameters: %w", err)
	}
	return params, nil
}
