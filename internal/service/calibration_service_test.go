package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"examprep_backend/internal/model"
)

// gatedEventLog 第一次存储调用卡在 release 上，制造一个长时间在跑的重拟合
type gatedEventLog struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedEventLog() *gatedEventLog {
	return &gatedEventLog{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (l *gatedEventLog) DistinctExamSubjects(_ context.Context, _ time.Time) ([]model.InteractionEvent, error) {
	l.calls.Add(1)
	l.started <- struct{}{}
	<-l.release
	return nil, nil
}

func (l *gatedEventLog) Append(_ context.Context, _ *model.InteractionEvent) error {
	return nil
}

func (l *gatedEventLog) ListByExamSubject(_ context.Context, _, _ string, _ time.Time) ([]model.InteractionEvent, error) {
	return nil, nil
}

func (l *gatedEventLog) PageByStudent(_ context.Context, _ string, _, _ int) ([]model.InteractionEvent, int64, error) {
	return nil, 0, nil
}

func TestRefitFromEventsSingleFlight(t *testing.T) {
	log := newGatedEventLog()
	svc := NewCalibrationService(nil, log)

	first := make(chan struct{})
	go func() {
		svc.RefitFromEvents(context.Background(), 30)
		close(first)
	}()
	<-log.started

	// 上一轮还在跑，并发触发直接跳过，不会再打到事件日志
	svc.RefitFromEvents(context.Background(), 30)
	assert.EqualValues(t, 1, log.calls.Load())

	close(log.release)
	<-first

	// 上一轮结束后允许新一轮
	log.release = make(chan struct{})
	second := make(chan struct{})
	go func() {
		svc.RefitFromEvents(context.Background(), 30)
		close(second)
	}()
	<-log.started
	close(log.release)
	<-second
	assert.EqualValues(t, 2, log.calls.Load())
}
