package metrics

import "sync"

// StaticGauges 返回固定状态的 GaugeSource，测试使用
type StaticGauges struct {
	mu sync.Mutex
	g  EngineGauges
}

// NewStaticGauges 创建 StaticGauges
func NewStaticGauges(g EngineGauges) *StaticGauges {
	return &StaticGauges{g: g}
}

// Set 替换状态
func (s *StaticGauges) Set(g EngineGauges) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g = g
}

// Gauges 实现 GaugeSource
func (s *StaticGauges) Gauges() EngineGauges {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g
}
