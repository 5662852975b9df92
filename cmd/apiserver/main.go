package main

// @title           Manufacturing Co-Pilot API
// @version         1.0
// @description     DFM 可制造性分析服务：远端分析优先，本地规则引擎兜底

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/config"
	"mfgcopilot/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadDefault()
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
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化应用
	app, cleanup, err := InitializeApp(cfg, zapLogger)
	if err != nil {
		zapLogger.Errorf(ctx, "Failed to initialize app: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	// 4. 创建 HTTP Server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 5. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		zapLogger.Infof(ctx, "Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		zapLogger.Infof(ctx, "Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server, cfg, zapLogger)
	case err := <-serverErrChan:
		zapLogger.Errorf(ctx, "HTTP server error: %v", err)
	}

	zapLogger.Infof(ctx, "Application stopped")
}

// gracefulShutdown 优雅停机，等待进行中的 Smart Wait 请求结束
func gracefulShutdown(server *http.Server, cfg *config.Config, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf(ctx, "HTTP server shutdown error: %v", err)
		return
	}
	log.Infof(ctx, "HTTP server stopped gracefully")
}
