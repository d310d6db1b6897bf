package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"examprep_backend/internal/config"
	"examprep_backend/internal/engine"
	"examprep_backend/internal/graph"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"examprep_backend/pkg/monitoring"
)

// ParameterStore 概念参数读取，ConceptParameterRepository 实现
type ParameterStore interface {
	GetByConceptID(ctx context.Context, conceptID string) (*model.ConceptParameter, error)
}

// KnowledgeStateStore 掌握状态的读取与原子读改写，KnowledgeStateRepository 实现
type KnowledgeStateStore interface {
	Get(ctx context.Context, studentID, conceptID string) (*model.KnowledgeState, error)
	UpdateAtomic(ctx context.Context, studentID, conceptID string, prior float64, mutate func(state *model.KnowledgeState) error) (*model.KnowledgeState, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.KnowledgeState, error)
}

// EventLog 追加式作答事件日志，InteractionEventRepository 实现
type EventLog interface {
	Append(ctx context.Context, event *model.InteractionEvent) error
	ListByExamSubject(ctx context.Context, examCode, subject string, since time.Time) ([]model.InteractionEvent, error)
	DistinctExamSubjects(ctx context.Context, since time.Time) ([]model.InteractionEvent, error)
	PageByStudent(ctx context.Context, studentID string, page, limit int) ([]model.InteractionEvent, int64, error)
}

// MasteryService 每个作答事件触发一次同步管线：
// 负载估计 → 参数读取（带超时兜底）→ 原子 BKT 更新 → 一跳迁移 →
// 事件落日志 → 公平性累计 → 下一题时间分配。
// 所有存储访问都带显式超时：读路径超时退安全默认值，写路径超时作为错误上抛。
type MasteryService struct {
	ParamRepo    ParameterStore
	StateRepo    KnowledgeStateStore
	EventRepo    EventLog
	FairnessRepo FairnessStore
	Graph        *graph.Holder
	Allocation   *AllocationService
	Settings     *EngineSettings

	locks *KeyLocks
}

func NewMasteryService(
	paramRepo ParameterStore,
	stateRepo KnowledgeStateStore,
	eventRepo EventLog,
	fairnessRepo FairnessStore,
	graphHolder *graph.Holder,
	allocation *AllocationService,
	settings *EngineSettings,
) *MasteryService {
	return &MasteryService{
		ParamRepo:    paramRepo,
		StateRepo:    stateRepo,
		EventRepo:    eventRepo,
		FairnessRepo: fairnessRepo,
		Graph:        graphHolder,
		Allocation:   allocation,
		Settings:     settings,
		locks:        NewKeyLocks(256),
	}
}

func stateKey(studentID, conceptID string) string {
	return studentID + "|" + conceptID
}

func storeTimeout(cfg config.EngineConfig) time.Duration {
	return time.Duration(cfg.StoreTimeoutMs) * time.Millisecond
}

func signalsFrom(ctx model.BehaviorContext) engine.Signals {
	return engine.Signals{
		ResponseTimeMs:    ctx.ResponseTimeMs,
		ExpectedTimeMs:    ctx.ExpectedTimeMs,
		HesitationMs:      ctx.HesitationMs,
		KeystrokeVariance: ctx.KeystrokeVariance,
		DeviceType:        ctx.DeviceType,
		NetworkQuality:    ctx.NetworkQuality,
		SessionMinutes:    ctx.SessionMinutes,
		ProblemComplexity: ctx.ProblemComplexity,
	}
}

// fetchParams Parameter Store 读取，显式超时。超时或存储故障时退回安全默认
// 参数并记录指标，请求本身继续——概念不存在除外，那是配置问题要暴露出去。
func (s *MasteryService) fetchParams(ctx context.Context, conceptID string, cfg config.EngineConfig) (engine.Params, bool, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout(cfg))
	defer cancel()

	param, err := s.ParamRepo.GetByConceptID(timeoutCtx, conceptID)
	if err == nil {
		return engine.Params{
			Learn:  param.LearnRate,
			Slip:   param.SlipRate,
			Guess:  param.GuessRate,
			Forget: param.ForgettingRate,
		}, false, nil
	}
	if errors.Is(err, util.ErrConceptNotFound) {
		return engine.Params{}, false, err
	}

	monitoring.DependencyTimeouts.WithLabelValues("parameter_store").Inc()
	logger.Log.Warn("parameter store degraded, using fallback params",
		zap.String("concept", conceptID), zap.Error(&util.DependencyTimeoutError{Dependency: "parameter_store", Cause: err}))

	return engine.Params{
		Learn:  cfg.FallbackLearnRate,
		Slip:   cfg.FallbackSlipRate,
		Guess:  cfg.FallbackGuessRate,
		Forget: cfg.FallbackForgettingRate,
	}, true, nil
}

func (s *MasteryService) UpdateMastery(ctx context.Context, req model.UpdateMasteryRequest) (*model.UpdateMasteryResult, error) {
	start := time.Now()
	cfg := s.Settings.Get()

	est := engine.EstimateLoad(signalsFrom(req.Context), cfg.OverloadThreshold)

	baseParams, degraded, err := s.fetchParams(ctx, req.ConceptID, cfg)
	if err != nil {
		return nil, err
	}
	// 参数不自洽在任何状态变更前拒绝
	if err := baseParams.Validate(); err != nil {
		return nil, &util.ConfigurationError{ConceptID: req.ConceptID, Detail: err.Error()}
	}
	effParams := baseParams.WithStress(est.Stress, cfg.StressSlipGain)

	var (
		masteryBefore float64
		rawConfidence float64
		recovery      bool
	)

	// 写路径同样限时：行锁等待不能超过配置超时，否则持有分段锁期间
	// 会把同分片的其它键一起拖住。写超时没有安全兜底，作为错误上抛。
	key := stateKey(req.StudentID, req.ConceptID)
	s.locks.Lock(key)
	writeCtx, cancelWrite := context.WithTimeout(ctx, storeTimeout(cfg))
	state, err := s.StateRepo.UpdateAtomic(writeCtx, req.StudentID, req.ConceptID, cfg.DefaultPrior,
		func(st *model.KnowledgeState) error {
			decayed := engine.Decay(st.Mastery, cfg.DefaultPrior, baseParams.Forget, time.Since(st.LastPracticed))
			masteryBefore = decayed
			rawConfidence = engine.PredictCorrect(decayed, effParams)

			posterior, err := engine.Update(decayed, effParams, req.Correct)
			if err != nil {
				return err
			}

			st.Mastery = posterior
			st.PracticeCount++
			st.LastPracticed = time.Now()
			if req.Correct {
				st.ConsecutiveIncorrect = 0
			} else {
				st.ConsecutiveIncorrect++
			}
			recovery = engine.RecoveryTriggered(posterior, st.ConsecutiveIncorrect, engine.RecoveryConfig{
				Floor:  cfg.RecoveryFloor,
				Streak: cfg.RecoveryStreak,
			})
			return nil
		})
	cancelWrite()
	s.locks.Unlock(key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			monitoring.DependencyTimeouts.WithLabelValues("knowledge_state_store").Inc()
			return nil, &util.DependencyTimeoutError{Dependency: "knowledge_state_store", Cause: err}
		}
		return nil, err
	}

	result := &model.UpdateMasteryResult{
		StudentID:     req.StudentID,
		ConceptID:     req.ConceptID,
		MasteryBefore: masteryBefore,
		MasteryAfter:  state.Mastery,
		PracticeCount: state.PracticeCount,
		Recovery:      recovery,
		Estimate: model.LoadEstimate{
			Stress:         est.Stress,
			IntrinsicLoad:  est.IntrinsicLoad,
			ExtraneousLoad: est.ExtraneousLoad,
			TotalLoad:      est.TotalLoad,
			OverloadRisk:   est.OverloadRisk,
		},
		Degraded: degraded,
	}

	result.Transferred = s.applyTransfer(ctx, req, state.Mastery-masteryBefore, cfg)

	s.appendEvent(ctx, req, est, masteryBefore, state.Mastery, rawConfidence)

	if req.DemographicGrp != "" {
		fairCtx, cancelFair := context.WithTimeout(ctx, storeTimeout(cfg))
		if err := s.FairnessRepo.Record(fairCtx, req.ExamCode, req.Subject, req.DemographicGrp, state.Mastery); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				monitoring.DependencyTimeouts.WithLabelValues("fairness_store").Inc()
			}
			logger.Log.Warn("fairness record failed", zap.Error(err))
		}
		cancelFair()
	}

	if alloc, allocDegraded := s.Allocation.allocateNext(ctx, req.ExamCode, est, state.Mastery, req.Context); alloc != nil {
		result.NextAllocation = alloc
		result.Degraded = result.Degraded || allocDegraded
	}

	monitoring.MasteryUpdates.WithLabelValues(req.ExamCode, req.Subject).Inc()
	if recovery {
		monitoring.RecoveryFlags.WithLabelValues(req.ExamCode).Inc()
	}
	monitoring.UpdateDuration.Observe(time.Since(start).Seconds())

	return result, nil
}

// applyTransfer 一跳阻尼迁移：只更新始发概念的直接邻居，绝不沿图继续传，
// 所以迁移图里的环不会引起级联。迁移失败只降级记录，不影响主更新。
func (s *MasteryService) applyTransfer(ctx context.Context, req model.UpdateMasteryRequest, delta float64, cfg config.EngineConfig) []model.TransferOutcome {
	g := s.Graph.Get()
	if g == nil || delta == 0 {
		return nil
	}

	var outcomes []model.TransferOutcome
	for _, edge := range g.Neighbors(req.ConceptID) {
		edge := edge
		key := stateKey(req.StudentID, edge.To)

		var before, after float64
		s.locks.Lock(key)
		edgeCtx, cancelEdge := context.WithTimeout(ctx, storeTimeout(cfg))
		_, err := s.StateRepo.UpdateAtomic(edgeCtx, req.StudentID, edge.To, cfg.DefaultPrior,
			func(st *model.KnowledgeState) error {
				before = st.Mastery
				st.Mastery = engine.ApplyTransfer(st.Mastery, edge.Weight, delta, cfg.TransferFactor)
				after = st.Mastery
				// 迁移不算练习，计数与连错串保持不变
				return nil
			})
		cancelEdge()
		s.locks.Unlock(key)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				monitoring.DependencyTimeouts.WithLabelValues("knowledge_state_store").Inc()
			}
			logger.Log.Warn("transfer update failed",
				zap.String("from", req.ConceptID), zap.String("to", edge.To), zap.Error(err))
			continue
		}

		outcomes = append(outcomes, model.TransferOutcome{
			ConceptID:     edge.To,
			Weight:        edge.Weight,
			MasteryBefore: before,
			MasteryAfter:  after,
		})
	}
	return outcomes
}

// appendEvent 事件日志只追加。写失败按依赖降级处理，不让请求失败。
func (s *MasteryService) appendEvent(ctx context.Context, req model.UpdateMasteryRequest, est engine.LoadEstimate, before, after, rawConfidence float64) {
	event := &model.InteractionEvent{
		StudentID:      req.StudentID,
		ConceptID:      req.ConceptID,
		ExamCode:       req.ExamCode,
		Subject:        req.Subject,
		DemographicGrp: req.DemographicGrp,
		Correct:        req.Correct,
		ResponseTimeMs: req.Context.ResponseTimeMs,
		DeviceType:     req.Context.DeviceType,
		NetworkQuality: req.Context.NetworkQuality,
		Stress:         est.Stress,
		TotalLoad:      est.TotalLoad,
		MasteryBefore:  before,
		MasteryAfter:   after,
		RawConfidence:  rawConfidence,
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout(s.Settings.Get()))
	defer cancel()
	if err := s.EventRepo.Append(timeoutCtx, event); err != nil {
		monitoring.DependencyTimeouts.WithLabelValues("event_log").Inc()
		logger.Log.Warn("interaction event append failed", zap.Error(err))
	}
}

// StudentStates 学生全部概念的掌握状态
func (s *MasteryService) StudentStates(ctx context.Context, studentID string) ([]model.KnowledgeState, error) {
	if studentID == "" {
		return nil, &util.ValidationError{Field: "studentId", Detail: "must not be empty"}
	}
	return s.StateRepo.ListByStudent(ctx, studentID)
}

// StudentHistory 只读分页浏览事件日志
func (s *MasteryService) StudentHistory(ctx context.Context, studentID string, page, limit int) ([]model.InteractionEvent, int64, error) {
	if studentID == "" {
		return nil, 0, &util.ValidationError{Field: "studentId", Detail: "must not be empty"}
	}
	return s.EventRepo.PageByStudent(ctx, studentID, page, limit)
}
