package multiplexing

import (
	"errors"
	"sync"

	"github.com/centreon/go-broker/pkg/interfaces"
)

// ErrFakeCache FakeCache 注入的错误
var ErrFakeCache = errors.New("fake cache failure")

// FakeCache 记录调用的 interfaces.Cache 实现，测试使用
type FakeCache struct {
	mu     sync.Mutex
	events []interfaces.Event
	adds   int

	// FailAdd 为 true 时 Add 返回 ErrFakeCache
	FailAdd bool
	// PanicAdd 为 true 时 Add panic
	PanicAdd bool
}

// NewFakeCache 创建 FakeCache，可预置事件
func NewFakeCache(evs ...interfaces.Event) *FakeCache {
	return &FakeCache{events: evs}
}

// Add 实现 interfaces.Cache
func (c *FakeCache) Add(ev interfaces.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.adds++
	if c.PanicAdd {
		panic("fake cache panic")
	}
	if c.FailAdd {
		return ErrFakeCache
	}
	c.events = append(c.events, ev)
	return nil
}

// Drain 实现 interfaces.Cache
func (c *FakeCache) Drain() ([]interfaces.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.events
	c.events = nil
	return out, nil
}

// Len 实现 interfaces.Cache
func (c *FakeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Adds 返回 Add 调用次数
func (c *FakeCache) Adds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adds
}

// Events 返回缓存内容副本
func (c *FakeCache) Events() []interfaces.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interfaces.Event(nil), c.events...)
}

var _ interfaces.Cache = (*FakeCache)(nil)
