package service

import (
	"sync/atomic"

	"examprep_backend/internal/config"
)

// EngineSettings 引擎可调参数的热更新快照。configwatcher 重载配置后整体替换，
// 请求路径每次取一份一致的快照，不读半新半旧的值。
type EngineSettings struct {
	ptr atomic.Pointer[config.EngineConfig]
}

func NewEngineSettings(cfg config.EngineConfig) *EngineSettings {
	s := &EngineSettings{}
	s.ptr.Store(&cfg)
	return s
}

func (s *EngineSettings) Get() config.EngineConfig {
	return *s.ptr.Load()
}

func (s *EngineSettings) Update(cfg config.EngineConfig) {
	s.ptr.Store(&cfg)
}
