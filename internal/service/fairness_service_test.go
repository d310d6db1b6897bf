package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
)

// fakeFairnessStore 内存快照实现，隔离性测试用
type fakeFairnessStore struct {
	snaps map[string]*model.FairnessSnapshot
}

func newFakeFairnessStore() *fakeFairnessStore {
	return &fakeFairnessStore{snaps: make(map[string]*model.FairnessSnapshot)}
}

func (f *fakeFairnessStore) key(exam, subject, group string) string {
	return exam + "|" + subject + "|" + group
}

func (f *fakeFairnessStore) Record(_ context.Context, exam, subject, group string, outcome float64) error {
	k := f.key(exam, subject, group)
	snap, ok := f.snaps[k]
	if !ok {
		snap = &model.FairnessSnapshot{ExamCode: exam, Subject: subject, GroupCode: group}
		f.snaps[k] = snap
	}
	snap.OutcomeSum += outcome
	snap.SampleCount++
	return nil
}

func (f *fakeFairnessStore) ListByExamSubject(_ context.Context, exam, subject string) ([]model.FairnessSnapshot, error) {
	var out []model.FairnessSnapshot
	for _, snap := range f.snaps {
		if snap.ExamCode == exam && snap.Subject == subject {
			out = append(out, *snap)
		}
	}
	return out, nil
}

func (f *fakeFairnessStore) DistinctKeys(_ context.Context) ([]model.FairnessSnapshot, error) {
	seen := make(map[string]bool)
	var out []model.FairnessSnapshot
	for _, snap := range f.snaps {
		k := snap.ExamCode + "|" + snap.Subject
		if !seen[k] {
			seen[k] = true
			out = append(out, model.FairnessSnapshot{ExamCode: snap.ExamCode, Subject: snap.Subject})
		}
	}
	return out, nil
}

func testSettings() *EngineSettings {
	return NewEngineSettings(config.EngineConfig{
		DisparityThreshold: 0.08,
		MinGroupSamples:    2,
	})
}

func TestFairnessKeyIsolation(t *testing.T) {
	svc := NewFairnessService(newFakeFairnessStore(), testSettings())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "urban", 0.9))
		require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "rural", 0.2))
	}

	// 同考试不同科目 / 不同考试同科目都不受影响
	other, err := svc.Report(ctx, "NEET", "chemistry")
	require.NoError(t, err)
	assert.Empty(t, other.Groups)
	assert.Equal(t, 0.0, other.Disparity)

	other, err = svc.Report(ctx, "JEE_Mains", "physics")
	require.NoError(t, err)
	assert.Empty(t, other.Groups)

	target, err := svc.Report(ctx, "NEET", "physics")
	require.NoError(t, err)
	assert.Len(t, target.Groups, 2)
	assert.InDelta(t, 0.7, target.Disparity, 1e-9)
	assert.True(t, target.Flagged)
}

func TestFairnessSmallGroupReportedButExcluded(t *testing.T) {
	svc := NewFairnessService(newFakeFairnessStore(), testSettings())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "a", 0.6))
		require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "b", 0.58))
	}
	// 单样本组
	require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "tiny", 0.0))

	rep, err := svc.Report(ctx, "NEET", "physics")
	require.NoError(t, err)
	require.Len(t, rep.Groups, 3)

	byGroup := make(map[string]model.FairnessGroupStat)
	for _, g := range rep.Groups {
		byGroup[g.GroupCode] = g
	}
	assert.False(t, byGroup["tiny"].Included)
	assert.EqualValues(t, 1, byGroup["tiny"].SampleCount)
	assert.InDelta(t, 0.02, rep.Disparity, 1e-9)
	assert.False(t, rep.Flagged)
}

func TestFairnessRecordValidation(t *testing.T) {
	svc := NewFairnessService(newFakeFairnessStore(), testSettings())
	ctx := context.Background()

	err := svc.RecordSample(ctx, "", "physics", "a", 0.5)
	assert.True(t, util.IsValidationError(err))

	err = svc.RecordSample(ctx, "NEET", "physics", "a", 1.5)
	assert.True(t, util.IsValidationError(err))
}

func TestFairnessRollingAverage(t *testing.T) {
	svc := NewFairnessService(newFakeFairnessStore(), testSettings())
	ctx := context.Background()

	for _, v := range []float64{0.2, 0.4, 0.9} {
		require.NoError(t, svc.RecordSample(ctx, "NEET", "physics", "a", v))
	}
	rep, err := svc.Report(ctx, "NEET", "physics")
	require.NoError(t, err)
	require.Len(t, rep.Groups, 1)
	assert.InDelta(t, 0.5, rep.Groups[0].Average, 1e-9)
	assert.EqualValues(t, 3, rep.Groups[0].SampleCount)
}
