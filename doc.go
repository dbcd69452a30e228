// Package broker 提供监控事件分发核心
//
// Broker 接收采集端发送的帧格式字节流，解码为事件后交给多路复用引擎，
// 由引擎把每个事件复制到所有已注册的订阅者队列（Muxer）。
//
// # 核心概念
//
//   - Event: 不透明的事件句柄，引擎只读取事件类型用于过滤
//   - Engine: 多路复用引擎，NotStarted / Running / Stopped 三种状态
//   - Muxer: 订阅者私有队列，支持 Read / Ack / Nack 和回送
//   - Cache: Stopped 期间的回退缓存，Resume 时先于入站队列重放
//
// # 快速开始
//
//	b, err := broker.Start(ctx,
//	    broker.WithDataDir("/var/lib/broker"),
//	    broker.WithMetricsAddr(":9090"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	m, _ := b.RegisterMuxer("storage",
//	    broker.WithFilter(broker.Filter{Categories: []uint16{types.CategoryNeb}}),
//	)
//
//	n, err := b.PublishFrames(buf)
//
//	ev, err := m.Read(ctx)
//	m.Ack(1)
//
// # 状态
//
//	NotStarted ──Start──▶ Running ──Stop──▶ Stopped
//	                          ▲                 │
//	                          └─────Resume──────┘
//
//   - NotStarted: 事件只入队
//   - Running: 入队后立即分发给所有 Muxer
//   - Stopped: 事件写入缓存，未处理计数加一
//
// # 文件组织
//
//   - broker.go: Broker 生命周期与发布接口
//   - options.go: 配置选项
//   - fx.go: Fx 模块组装
//   - errors.go: 错误定义
//   - types.go: 类型别名
package broker
