package main

import (
	"context"
	"fmt"
	"time"

	"github.com/centreon/go-broker"
)

// progressEvery 消费者每处理多少事件输出一次进度
const progressEvery = 10000

// consume 持续读取并确认 m 中的事件，直到 ctx 取消
func consume(ctx context.Context, m *broker.Muxer) error {
	var count int64
	start := time.Now()
	for {
		ev, err := m.Read(ctx)
		if err != nil {
			logger.Info("消费者退出", "muxer", m.Name(), "events", count)
			return err
		}
		if _, err := m.Ack(1); err != nil {
			return fmt.Errorf("muxer %s: %w", m.Name(), err)
		}

		count++
		if count%progressEvery == 0 {
			logger.Info("消费进度", "muxer", m.Name(), "events", count,
				"rate", float64(count)/time.Since(start).Seconds(), "last", ev)
		}
		logger.Debug("事件已消费", "muxer", m.Name(), "event", ev)
	}
}
