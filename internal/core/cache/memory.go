package cache

import (
	"sync"

	"github.com/centreon/go-broker/pkg/interfaces"
)

// Memory 内存 FIFO 队列
type Memory struct {
	mu     sync.Mutex
	events []interfaces.Event
}

// NewMemory 创建内存队列
func NewMemory() *Memory {
	return &Memory{}
}

// Add 实现 interfaces.Cache
func (m *Memory) Add(ev interfaces.Event) error {
	return m.Push(ev)
}

// Push 实现 interfaces.Spool
func (m *Memory) Push(ev interfaces.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return nil
}

// Pop 实现 interfaces.Spool
func (m *Memory) Pop() (interfaces.Event, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.events) == 0 {
		return nil, false, nil
	}
	ev := m.events[0]
	m.events[0] = nil
	m.events = m.events[1:]
	return ev, true, nil
}

// Drain 实现 interfaces.Cache
func (m *Memory) Drain() ([]interfaces.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.events
	m.events = nil
	return events, nil
}

// Clear 实现 interfaces.Spool
func (m *Memory) Clear() error {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
	return nil
}

// Len 返回队列中的事件数
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

var (
	_ interfaces.Cache = (*Memory)(nil)
	_ interfaces.Spool = (*Memory)(nil)
)
