package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"examprep_backend/internal/engine"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"examprep_backend/pkg/monitoring"
)

// ExamConfigStore 考试配置读取，ExamConfigRepository 实现
type ExamConfigStore interface {
	GetByCode(ctx context.Context, examCode string) (*model.ExamConfig, error)
}

// AllocationService 下一题时间预算。考试硬上限来自 ExamConfig，
// 存储超时退回配置兜底上限，上限钳制永远是最后一步。
type AllocationService struct {
	ExamRepo  ExamConfigStore
	StateRepo KnowledgeStateStore
	Settings  *EngineSettings
}

func NewAllocationService(examRepo ExamConfigStore, stateRepo KnowledgeStateStore, settings *EngineSettings) *AllocationService {
	return &AllocationService{ExamRepo: examRepo, StateRepo: stateRepo, Settings: settings}
}

// examLimits (capMs, defaultBaseMs, degraded)
func (s *AllocationService) examLimits(ctx context.Context, examCode string) (int, int, bool, error) {
	cfg := s.Settings.Get()
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.StoreTimeoutMs)*time.Millisecond)
	defer cancel()

	exam, err := s.ExamRepo.GetByCode(timeoutCtx, examCode)
	if err != nil {
		monitoring.DependencyTimeouts.WithLabelValues("exam_config_store").Inc()
		logger.Log.Warn("exam config store degraded, using default cap",
			zap.String("exam", examCode), zap.Error(err))
		return cfg.DefaultCapMs, cfg.DefaultCapMs / 2, true, nil
	}
	if exam == nil {
		return 0, 0, false, util.ErrExamConfigNotFound
	}
	return exam.MaxQuestionTimeMs, exam.DefaultQuestionTimeMs, false, nil
}

func (s *AllocationService) AllocateTime(ctx context.Context, req model.AllocateTimeRequest) (*model.TimeAllocation, error) {
	cfg := s.Settings.Get()

	capMs, baseMs, _, err := s.examLimits(ctx, req.ExamCode)
	if err != nil {
		return nil, err
	}
	if req.BaseTimeMs > 0 {
		baseMs = req.BaseTimeMs
	}

	est := engine.EstimateLoad(signalsFrom(req.Context), cfg.OverloadThreshold)

	mastery := cfg.DefaultPrior
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.StoreTimeoutMs)*time.Millisecond)
	state, err := s.StateRepo.Get(timeoutCtx, req.StudentID, req.ConceptID)
	cancel()
	if err != nil {
		monitoring.DependencyTimeouts.WithLabelValues("knowledge_state_store").Inc()
		logger.Log.Warn("knowledge state store degraded, using default prior",
			zap.String("student", req.StudentID), zap.Error(err))
	} else if state != nil {
		mastery = state.Mastery
	}

	out, err := engine.Allocate(engine.AllocationInput{
		BaseMs:     baseMs,
		Stress:     est.Stress,
		Fatigue:    engine.Fatigue(req.Context.SessionMinutes),
		Mastery:    mastery,
		Difficulty: engine.Clamp01(req.Difficulty),
		CapMs:      capMs,
	})
	if err != nil {
		return nil, err
	}
	return toTimeAllocation(out), nil
}

// allocateNext UpdateMastery 管线内部用：为下一题出预算，失败只降级不报错。
func (s *AllocationService) allocateNext(ctx context.Context, examCode string, est engine.LoadEstimate, mastery float64, behavior model.BehaviorContext) (*model.TimeAllocation, bool) {
	capMs, baseMs, degraded, err := s.examLimits(ctx, examCode)
	if err != nil {
		logger.Log.Warn("next-question allocation skipped", zap.String("exam", examCode), zap.Error(err))
		return nil, false
	}

	out, err := engine.Allocate(engine.AllocationInput{
		BaseMs:     baseMs,
		Stress:     est.Stress,
		Fatigue:    engine.Fatigue(behavior.SessionMinutes),
		Mastery:    mastery,
		Difficulty: engine.Clamp01(behavior.ProblemComplexity),
		CapMs:      capMs,
	})
	if err != nil {
		logger.Log.Warn("next-question allocation failed", zap.Error(err))
		return nil, degraded
	}
	return toTimeAllocation(out), degraded
}

func toTimeAllocation(out engine.Allocation) *model.TimeAllocation {
	breakdown := make([]model.TimeAdjustment, 0, len(out.Adjustments))
	for _, adj := range out.Adjustments {
		breakdown = append(breakdown, model.TimeAdjustment{
			Name:    adj.Name,
			Factor:  adj.Factor,
			AfterMs: adj.AfterMs,
		})
	}
	return &model.TimeAllocation{
		FinalTimeMs: out.FinalMs,
		Capped:      out.Capped,
		CapMs:       out.CapMs,
		Breakdown:   breakdown,
	}
}
