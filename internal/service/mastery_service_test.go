package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"examprep_backend/internal/config"
	"examprep_backend/internal/graph"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
)

func init() {
	// 服务层在降级路径上打日志，测试里静音
	logger.Log = zap.NewNop()
}

type fakeParameterStore struct {
	params map[string]*model.ConceptParameter
}

func (f *fakeParameterStore) GetByConceptID(_ context.Context, conceptID string) (*model.ConceptParameter, error) {
	p, ok := f.params[conceptID]
	if !ok {
		return nil, util.ErrConceptNotFound
	}
	return p, nil
}

// fakeStateStore 内存实现。stall 为 true 时 UpdateAtomic 挂起到
// 上下文超时，模拟行锁等待打满的存储。
type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]*model.KnowledgeState
	stall  bool
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]*model.KnowledgeState)}
}

func (f *fakeStateStore) Get(_ context.Context, studentID, conceptID string) (*model.KnowledgeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.states[studentID+"|"+conceptID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStateStore) UpdateAtomic(ctx context.Context, studentID, conceptID string, prior float64, mutate func(state *model.KnowledgeState) error) (*model.KnowledgeState, error) {
	if f.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := studentID + "|" + conceptID
	st, ok := f.states[key]
	if !ok {
		st = &model.KnowledgeState{
			StudentID:     studentID,
			ConceptID:     conceptID,
			Mastery:       prior,
			LastPracticed: time.Now(),
		}
		f.states[key] = st
	}
	if err := mutate(st); err != nil {
		return nil, err
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStateStore) ListByStudent(_ context.Context, studentID string) ([]model.KnowledgeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.KnowledgeState
	for _, st := range f.states {
		if st.StudentID == studentID {
			out = append(out, *st)
		}
	}
	return out, nil
}

type fakeEventLog struct {
	mu     sync.Mutex
	events []model.InteractionEvent
}

func (f *fakeEventLog) Append(_ context.Context, event *model.InteractionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventLog) ListByExamSubject(_ context.Context, examCode, subject string, _ time.Time) ([]model.InteractionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InteractionEvent
	for _, ev := range f.events {
		if ev.ExamCode == examCode && ev.Subject == subject {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventLog) DistinctExamSubjects(_ context.Context, _ time.Time) ([]model.InteractionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []model.InteractionEvent
	for _, ev := range f.events {
		k := ev.ExamCode + "|" + ev.Subject
		if !seen[k] {
			seen[k] = true
			out = append(out, model.InteractionEvent{ExamCode: ev.ExamCode, Subject: ev.Subject})
		}
	}
	return out, nil
}

func (f *fakeEventLog) PageByStudent(_ context.Context, studentID string, page, limit int) ([]model.InteractionEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InteractionEvent
	for _, ev := range f.events {
		if ev.StudentID == studentID {
			out = append(out, ev)
		}
	}
	return out, int64(len(out)), nil
}

type fakeExamStore struct {
	exams map[string]*model.ExamConfig
}

func (f *fakeExamStore) GetByCode(_ context.Context, examCode string) (*model.ExamConfig, error) {
	return f.exams[examCode], nil
}

func masteryTestSettings(storeTimeoutMs int) *EngineSettings {
	return NewEngineSettings(config.EngineConfig{
		DefaultPrior:           0.25,
		RecoveryFloor:          0.3,
		RecoveryStreak:         3,
		TransferFactor:         0.5,
		StressSlipGain:         0.5,
		OverloadThreshold:      0.8,
		StoreTimeoutMs:         storeTimeoutMs,
		DefaultCapMs:           120000,
		FallbackLearnRate:      0.2,
		FallbackSlipRate:       0.1,
		FallbackGuessRate:      0.2,
		FallbackForgettingRate: 0.02,
	})
}

func newMasteryFixture(t *testing.T, storeTimeoutMs int) (*MasteryService, *fakeStateStore, *fakeEventLog, *fakeFairnessStore) {
	t.Helper()

	params := &fakeParameterStore{params: map[string]*model.ConceptParameter{
		"kinematics": {ConceptID: "kinematics", Subject: "physics", LearnRate: 0.3, SlipRate: 0.1, GuessRate: 0.2, ForgettingRate: 0.05},
		"dynamics":   {ConceptID: "dynamics", Subject: "physics", LearnRate: 0.25, SlipRate: 0.1, GuessRate: 0.2, ForgettingRate: 0.05},
	}}
	g, err := graph.NewTransferGraph([]graph.Edge{
		{From: "kinematics", To: "dynamics", Weight: 0.6},
	})
	require.NoError(t, err)

	states := newFakeStateStore()
	events := &fakeEventLog{}
	fairness := newFakeFairnessStore()
	settings := masteryTestSettings(storeTimeoutMs)
	exams := &fakeExamStore{exams: map[string]*model.ExamConfig{
		"NEET": {ExamCode: "NEET", Name: "NEET", MaxQuestionTimeMs: 90000, DefaultQuestionTimeMs: 60000},
	}}
	alloc := NewAllocationService(exams, states, settings)
	svc := NewMasteryService(params, states, events, fairness, graph.NewHolder(g), alloc, settings)
	return svc, states, events, fairness
}

func TestUpdateMasteryPipelineWorkedExample(t *testing.T) {
	svc, _, events, fairness := newMasteryFixture(t, 200)

	res, err := svc.UpdateMastery(context.Background(), model.UpdateMasteryRequest{
		StudentID:      "s1",
		ConceptID:      "kinematics",
		Correct:        true,
		ExamCode:       "NEET",
		Subject:        "physics",
		DemographicGrp: "urban",
	})
	require.NoError(t, err)

	// 先验 0.25，L=0.3/S=0.1/G=0.2，答对 → 0.72；零行为信号下压力为 0，
	// 有效参数即基准参数
	assert.InDelta(t, 0.25, res.MasteryBefore, 1e-9)
	assert.InDelta(t, 0.72, res.MasteryAfter, 1e-9)
	assert.Equal(t, 1, res.PracticeCount)
	assert.False(t, res.Recovery)
	assert.False(t, res.Degraded)
	assert.Equal(t, 0.0, res.Estimate.Stress)

	// 一跳迁移：dynamics 从先验 0.25 涨到 0.25 + 0.6*0.47*0.5 = 0.391
	require.Len(t, res.Transferred, 1)
	assert.Equal(t, "dynamics", res.Transferred[0].ConceptID)
	assert.InDelta(t, 0.25, res.Transferred[0].MasteryBefore, 1e-9)
	assert.InDelta(t, 0.391, res.Transferred[0].MasteryAfter, 1e-9)

	// 事件带更新前的原始置信度 0.25*0.9 + 0.75*0.2 = 0.375
	require.Len(t, events.events, 1)
	assert.InDelta(t, 0.375, events.events[0].RawConfidence, 1e-9)
	assert.InDelta(t, 0.25, events.events[0].MasteryBefore, 1e-9)
	assert.InDelta(t, 0.72, events.events[0].MasteryAfter, 1e-9)

	// 公平性分组记录更新后的掌握度
	snap := fairness.snaps["NEET|physics|urban"]
	require.NotNil(t, snap)
	assert.EqualValues(t, 1, snap.SampleCount)
	assert.InDelta(t, 0.72, snap.OutcomeSum, 1e-9)

	// 下一题预算：60000 * (1 - 0.3*0.72) = 47040，远低于 NEET 硬上限
	require.NotNil(t, res.NextAllocation)
	assert.Equal(t, 90000, res.NextAllocation.CapMs)
	assert.Equal(t, 47040, res.NextAllocation.FinalTimeMs)
	assert.False(t, res.NextAllocation.Capped)
}

func TestUpdateMasteryStateWriteTimeoutSurfaces(t *testing.T) {
	svc, states, events, fairness := newMasteryFixture(t, 20)
	states.stall = true

	res, err := svc.UpdateMastery(context.Background(), model.UpdateMasteryRequest{
		StudentID:      "s1",
		ConceptID:      "kinematics",
		Correct:        true,
		ExamCode:       "NEET",
		Subject:        "physics",
		DemographicGrp: "urban",
	})
	// 主状态写没有安全兜底：超时作为依赖超时错误上抛，不静默降级
	require.Error(t, err)
	assert.True(t, util.IsDependencyTimeout(err))
	assert.Nil(t, res)

	// 失败的更新不产生事件，也不污染公平性聚合
	assert.Empty(t, events.events)
	assert.Empty(t, fairness.snaps)
}

func TestUpdateMasteryUnknownConceptRejected(t *testing.T) {
	svc, _, _, _ := newMasteryFixture(t, 200)

	_, err := svc.UpdateMastery(context.Background(), model.UpdateMasteryRequest{
		StudentID: "s1",
		ConceptID: "no-such-concept",
		Correct:   true,
		ExamCode:  "NEET",
		Subject:   "physics",
	})
	require.ErrorIs(t, err, util.ErrConceptNotFound)
}
