package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mfgcopilot/internal/worker"
	"mfgcopilot/pkg/config"
	"mfgcopilot/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(logger.Options{
		Level:    cfg.App.LogLevel,
		Encoding: cfg.App.LogEncoding,
		Service:  cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	zapLogger.Infof(ctx, "Config loaded: %s, env: %s, log_level: %s", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 3. 创建 Manager
	mgr, err := worker.NewManagerInstance(cfg, zapLogger)
	if err != nil {
		zapLogger.Errorf(ctx, "Failed to create manager: %v", err)
		os.Exit(1)
	}

	// 4. 启动 Manager
	go func() {
		if err := mgr.Start(); err != nil {
			zapLogger.Errorf(ctx, "Manager start failed: %v", err)
			os.Exit(1)
		}
	}()

	zapLogger.Infof(ctx, "Worker started. Press Ctrl+C to shutdown.")

	// 5. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	zapLogger.Infof(ctx, "Received signal: %v, shutting down worker...", sig)

	// 6. 优雅关闭 Manager
	mgr.Shutdown()

	zapLogger.Infof(ctx, "Worker exited gracefully")
}
