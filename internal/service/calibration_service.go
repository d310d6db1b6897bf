package service

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"examprep_backend/internal/engine"
	"examprep_backend/internal/model"
	"examprep_backend/internal/repository"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
)

// CalibrationService 温度标定。拟合离线批量运行，绝不阻塞热路径；
// 应用侧未标定的键落到温度 1（恒等）。
type CalibrationService struct {
	CalibrationRepo *repository.CalibrationRepository
	EventRepo       EventLog

	refitting atomic.Bool
}

func NewCalibrationService(calibrationRepo *repository.CalibrationRepository, eventRepo EventLog) *CalibrationService {
	return &CalibrationService{CalibrationRepo: calibrationRepo, EventRepo: eventRepo}
}

func (s *CalibrationService) Fit(ctx context.Context, examCode, subject string, logits []float64, labels []int) (*model.CalibrationEntry, error) {
	if examCode == "" || subject == "" {
		return nil, &util.ValidationError{Field: "examCode/subject", Detail: "must not be empty"}
	}

	temperature, err := engine.FitTemperature(logits, labels)
	if err != nil {
		// 退化输入明确上报，不落库
		return nil, err
	}
	return s.CalibrationRepo.Upsert(ctx, examCode, subject, temperature, len(logits))
}

// Apply 原始分数 → 标定概率。读取失败按未标定处理（温度 1），不阻塞调用方。
func (s *CalibrationService) Apply(ctx context.Context, examCode, subject string, rawScore float64) float64 {
	temperature := 1.0
	entry, err := s.CalibrationRepo.Get(ctx, examCode, subject)
	if err != nil {
		logger.Log.Warn("calibration store degraded, using identity temperature",
			zap.String("exam", examCode), zap.String("subject", subject), zap.Error(err))
	} else if entry != nil {
		temperature = entry.Temperature
	}
	return engine.ApplyTemperature(rawScore, temperature)
}

func (s *CalibrationService) List(ctx context.Context) ([]model.CalibrationEntry, error) {
	return s.CalibrationRepo.List(ctx)
}

// RefitFromEvents 定时任务：用事件日志里的 (rawConfidence, correct) 重拟合
// 每个 (exam, subject) 的温度。退化的键跳过，单键失败不影响其它键。
// 同一时刻只允许一次重拟合在跑，后到的调用直接跳过。
func (s *CalibrationService) RefitFromEvents(ctx context.Context, windowDays int) {
	if !s.refitting.CompareAndSwap(false, true) {
		logger.Log.Info("calibration refit already running, skipping")
		return
	}
	defer s.refitting.Store(false)

	since := time.Now().AddDate(0, 0, -windowDays)

	keys, err := s.EventRepo.DistinctExamSubjects(ctx, since)
	if err != nil {
		logger.Log.Error("calibration refit: listing exam/subject keys failed", zap.Error(err))
		return
	}

	for _, key := range keys {
		events, err := s.EventRepo.ListByExamSubject(ctx, key.ExamCode, key.Subject, since)
		if err != nil {
			logger.Log.Warn("calibration refit: load events failed",
				zap.String("exam", key.ExamCode), zap.String("subject", key.Subject), zap.Error(err))
			continue
		}

		logits := make([]float64, 0, len(events))
		labels := make([]int, 0, len(events))
		for _, ev := range events {
			p := ev.RawConfidence
			if p <= 0 || p >= 1 {
				continue
			}
			logits = append(logits, math.Log(p/(1-p)))
			if ev.Correct {
				labels = append(labels, 1)
			} else {
				labels = append(labels, 0)
			}
		}

		entry, err := s.Fit(ctx, key.ExamCode, key.Subject, logits, labels)
		if err != nil {
			if util.IsDegenerateCalibration(err) || util.IsValidationError(err) {
				logger.Log.Info("calibration refit: key skipped",
					zap.String("exam", key.ExamCode), zap.String("subject", key.Subject), zap.Error(err))
			} else {
				logger.Log.Error("calibration refit failed",
					zap.String("exam", key.ExamCode), zap.String("subject", key.Subject), zap.Error(err))
			}
			continue
		}

		logger.Log.Info("calibration refit complete",
			zap.String("exam", entry.ExamCode),
			zap.String("subject", entry.Subject),
			zap.Float64("temperature", entry.Temperature),
			zap.Int("samples", entry.SampleSize))
	}
}
