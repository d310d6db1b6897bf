package service

import (
	"context"
	"fmt"

	"examprep_backend/internal/engine"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
)

// FairnessStore 快照存取，FairnessRepository 实现
type FairnessStore interface {
	Record(ctx context.Context, examCode, subject, group string, outcome float64) error
	ListByExamSubject(ctx context.Context, examCode, subject string) ([]model.FairnessSnapshot, error)
	DistinctKeys(ctx context.Context) ([]model.FairnessSnapshot, error)
}

// FairnessService 人群分组的掌握产出聚合与差异度报告。
type FairnessService struct {
	Store    FairnessStore
	Settings *EngineSettings
}

func NewFairnessService(store FairnessStore, settings *EngineSettings) *FairnessService {
	return &FairnessService{Store: store, Settings: settings}
}

func (s *FairnessService) RecordSample(ctx context.Context, examCode, subject, group string, outcome float64) error {
	if examCode == "" || subject == "" || group == "" {
		return &util.ValidationError{Field: "examCode/subject/group", Detail: "must not be empty"}
	}
	if outcome < 0 || outcome > 1 {
		return &util.ValidationError{Field: "outcome", Detail: fmt.Sprintf("%v outside [0,1]", outcome)}
	}
	return s.Store.Record(ctx, examCode, subject, group, outcome)
}

func (s *FairnessService) Report(ctx context.Context, examCode, subject string) (*model.FairnessReport, error) {
	if examCode == "" || subject == "" {
		return nil, &util.ValidationError{Field: "examCode/subject", Detail: "must not be empty"}
	}

	snaps, err := s.Store.ListByExamSubject(ctx, examCode, subject)
	if err != nil {
		return nil, err
	}

	cfg := s.Settings.Get()
	stats := make([]engine.GroupStat, 0, len(snaps))
	for _, snap := range snaps {
		stats = append(stats, engine.GroupStat{
			Group:   snap.GroupCode,
			Average: snap.Average(),
			Count:   snap.SampleCount,
		})
	}

	rep := engine.BuildFairnessReport(stats, cfg.DisparityThreshold, cfg.MinGroupSamples)

	groups := make([]model.FairnessGroupStat, 0, len(rep.Groups))
	for _, g := range rep.Groups {
		groups = append(groups, model.FairnessGroupStat{
			GroupCode:   g.Group,
			Average:     g.Average,
			SampleCount: g.Count,
			Included:    rep.Included[g.Group],
		})
	}

	return &model.FairnessReport{
		ExamCode:  examCode,
		Subject:   subject,
		Groups:    groups,
		Disparity: rep.Disparity,
		Flagged:   rep.Flagged,
		Threshold: cfg.DisparityThreshold,
	}, nil
}

// AllReports 所有出现过的 (exam, subject) 键的报告，周期扫描与导出用
func (s *FairnessService) AllReports(ctx context.Context) ([]model.FairnessReport, error) {
	keys, err := s.Store.DistinctKeys(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]model.FairnessReport, 0, len(keys))
	for _, key := range keys {
		rep, err := s.Report(ctx, key.ExamCode, key.Subject)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}
