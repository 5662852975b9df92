package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"mfgcopilot/internal/app/config"
	"mfgcopilot/internal/app/domains/modules/mdanalysis"
	"mfgcopilot/internal/app/domains/modules/mdjob"
	"mfgcopilot/internal/app/domains/repo/rpanalysis"
	"mfgcopilot/internal/app/domains/services/svanalysis"
	"mfgcopilot/internal/app/infra/persistence/redis"
	"mfgcopilot/internal/app/server/handlers/analysis"
	"mfgcopilot/internal/app/server/routers"
	"mfgcopilot/internal/bootstrap"
	"mfgcopilot/pkg/infra/mysql"
	"mfgcopilot/pkg/lmstfy"
	"mfgcopilot/pkg/logger"
)

// App 应用依赖集合
type App struct {
	Engine *gin.Engine
}

// InitializeApp 手工装配依赖，返回 cleanup 释放连接
func InitializeApp(cfg *config.Config, log logger.Logger) (*App, func(), error) {
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	redisClient, err := redis.NewPubSubClient(cfg.Redis)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		redisClient.Close()
		sqlDB.Close()
		return nil, nil, err
	}

	analysisModule := mdanalysis.NewAnalysisModule(rpanalysis.NewAnalysisRepository(db))
	jobModule := mdjob.NewJobModule(lmstfyClient, redisClient, cfg.Lmstfy.Queue, cfg.Redis.ChannelPrefix)
	orchestrator := bootstrap.NewOrchestrator(cfg.Engine, cfg.Remote, log)

	analysisService := svanalysis.NewAnalysisService(analysisModule, jobModule, orchestrator, cfg.Server.MaxWaitSeconds, log)
	analysisHandler := analysis.NewAnalysisHandler(analysisService, log)

	engine := routers.SetupRoutes(analysisHandler, routers.Options{
		ServiceName: cfg.App.Name,
		APIKeys:     cfg.Auth.APIKeys,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
		Logger:      log,
	})

	cleanup := func() {
		ctx := context.Background()
		if err := redisClient.Close(); err != nil {
			log.Warnf(ctx, "close redis failed: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			log.Warnf(ctx, "close mysql failed: %v", err)
		}
	}

	return &App{Engine: engine}, cleanup, nil
}
