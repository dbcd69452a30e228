// Package main 提供 broker 命令行入口
//
// 从文件或标准输入读取帧格式事件流，发布给多路复用引擎，
// 并为每个指定的 Muxer 启动一个消费者记录消费进度。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/centreon/go-broker"
	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("broker/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖 / 快速测试
//   配置文件：持久化配置（JSON / YAML）
//   环境变量：BROKER_ 前缀，优先级介于两者之间
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数
	// ─────────────────────────────────────────────────────────────────────
	configFile  = flag.String("config", "", "配置文件路径（.json / .yaml）")
	dataDir     = flag.String("data-dir", "", "数据目录（为空时只使用内存）")
	input       = flag.String("input", "-", "事件流来源文件，- 表示标准输入，空字符串表示不读取")
	muxers      = flag.String("muxers", "default", "消费者 Muxer 名称（逗号分隔）")
	metricsAddr = flag.String("metrics-addr", "", "/metrics 监听地址")
	follow      = flag.Bool("follow", true, "输入结束后继续运行，直到收到退出信号")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logFile  = flag.String("log", "", "日志文件路径")
	logLevel = flag.String("log-level", "", "日志级别（debug/info/warn/error）")
	fxDebug  = flag.Bool("fx-debug", false, "输出 Fx 依赖注入事件")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("启动 broker", "version", broker.Version, "commit", broker.GitCommit, "buildDate", broker.BuildDate)

	b, err := broker.Start(ctx, broker.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("关闭 broker 失败", "error", err)
		}
	}()

	if addr := b.MetricsAddr(); addr != "" {
		fmt.Printf("指标: http://%s/metrics\n", addr)
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, name := range splitNames(*muxers) {
		m, err := b.RegisterMuxer(name)
		if err != nil && !errors.Is(err, broker.ErrMuxerNameInvalid) {
			return fmt.Errorf("注册 Muxer %q 失败: %w", name, err)
		}
		g.Go(func() error {
			return consume(gctx, m)
		})
	}

	g.Go(func() error {
		if err := publishInput(gctx, b, *input); err != nil {
			return err
		}
		if !*follow {
			stop()
		}
		return nil
	})

	fmt.Println("broker 已启动，按 Ctrl+C 退出")
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	st := b.Stats()
	logger.Info("broker 退出", "published", st.Published, "delivered", st.Delivered, "unprocessed", st.Unprocessed)
	return err
}

// publishInput 读取输入流并发布，path 为空时直接返回
func publishInput(ctx context.Context, b *broker.Broker, path string) error {
	if path == "" {
		return nil
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // G304: 用户指定的输入文件
		if err != nil {
			return fmt.Errorf("打开输入失败: %w", err)
		}
		defer f.Close()
		r = f
	}

	n, err := b.PublishStream(ctx, r)
	logger.Info("输入读取结束", "source", path, "events", n)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("读取输入失败: %w", err)
	}
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Println(broker.VersionInfo())
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("broker - 监控事件分发核心")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  broker [选项] < capture.bin")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量（BROKER_ 前缀，覆盖配置文件）:")
	fmt.Println("  BROKER_ENGINE_DELIVERY_TIMEOUT=2s")
	fmt.Println("  BROKER_STORAGE_DATA_DIR=/var/lib/broker")
	fmt.Println("  BROKER_FEEDBACK_ENABLED=false")
	fmt.Println("  BROKER_LOG_LEVEL=multiplexing=debug,info")
}
