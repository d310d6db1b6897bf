package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"examprep_backend/internal/config"
	"examprep_backend/pkg/logger"
)

// SchedulerService 离线批任务：夜间温度重拟合、公平性周期扫描、每周报告导出。
// 全部走事件日志/快照，和请求路径完全解耦。
type SchedulerService struct {
	Calibration *CalibrationService
	Fairness    *FairnessService
	Export      *ExportService
	Config      config.SchedulerConfig

	scheduler *gocron.Scheduler
}

func NewSchedulerService(calibration *CalibrationService, fairness *FairnessService, export *ExportService, cfg config.SchedulerConfig) *SchedulerService {
	return &SchedulerService{
		Calibration: calibration,
		Fairness:    fairness,
		Export:      export,
		Config:      cfg,
		scheduler:   gocron.NewScheduler(time.UTC),
	}
}

func (s *SchedulerService) Start() {
	if !s.Config.Enabled {
		logger.Log.Info("scheduler disabled")
		return
	}

	refitAt := s.Config.RefitAt
	if refitAt == "" {
		refitAt = "02:30"
	}
	windowDays := s.Config.RefitWindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	s.scheduler.Every(1).Day().At(refitAt).Do(func() {
		logger.Log.Info("nightly calibration refit starting", zap.Int("windowDays", windowDays))
		s.Calibration.RefitFromEvents(context.Background(), windowDays)
	})

	scanMins := s.Config.FairnessScanMins
	if scanMins <= 0 {
		scanMins = 60
	}
	s.scheduler.Every(scanMins).Minutes().Do(s.scanFairness)

	exportAt := s.Config.ExportAt
	if exportAt == "" {
		exportAt = "03:00"
	}
	s.weeklyJob(s.Config.ExportWeekday).At(exportAt).Do(func() {
		url, err := s.Export.ExportFairnessReports(context.Background())
		if err != nil {
			logger.Log.Error("weekly fairness export failed", zap.Error(err))
			return
		}
		if url != "" {
			logger.Log.Info("weekly fairness export complete", zap.String("url", url))
		}
	})

	s.scheduler.StartAsync()
	logger.Log.Info("scheduler started",
		zap.String("refitAt", refitAt),
		zap.Int("fairnessScanMins", scanMins))
}

func (s *SchedulerService) Stop() {
	s.scheduler.Stop()
}

// scanFairness 周期检查所有键，越线的打告警日志
func (s *SchedulerService) scanFairness() {
	reports, err := s.Fairness.AllReports(context.Background())
	if err != nil {
		logger.Log.Error("fairness scan failed", zap.Error(err))
		return
	}
	for _, rep := range reports {
		if rep.Flagged {
			logger.Log.Warn("fairness disparity above threshold",
				zap.String("exam", rep.ExamCode),
				zap.String("subject", rep.Subject),
				zap.Float64("disparity", rep.Disparity),
				zap.Float64("threshold", rep.Threshold))
		}
	}
}

func (s *SchedulerService) weeklyJob(weekday string) *gocron.Scheduler {
	switch strings.ToLower(weekday) {
	case "monday":
		return s.scheduler.Every(1).Week().Monday()
	case "tuesday":
		return s.scheduler.Every(1).Week().Tuesday()
	case "wednesday":
		return s.scheduler.Every(1).Week().Wednesday()
	case "thursday":
		return s.scheduler.Every(1).Week().Thursday()
	case "friday":
		return s.scheduler.Every(1).Week().Friday()
	case "saturday":
		return s.scheduler.Every(1).Week().Saturday()
	default:
		return s.scheduler.Every(1).Week().Sunday()
	}
}
