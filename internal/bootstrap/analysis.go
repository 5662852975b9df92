package bootstrap

import (
	"mfgcopilot/internal/business/dfm"
	"mfgcopilot/internal/business/fallback"
	"mfgcopilot/pkg/config"
	"mfgcopilot/pkg/logger"
)

// EngineConfig 配置文件 → 引擎配置，缺失项由引擎补默认值
func EngineConfig(c config.EngineConfig) dfm.Config {
	cfg := dfm.Config{
		Currency:  c.Currency,
		Materials: make(map[dfm.MaterialKind]dfm.MaterialRate, len(c.Materials)),
		Processes: make(map[dfm.ProcessKind]dfm.ProcessRate, len(c.Processes)),
	}
	for name, m := range c.Materials {
		cfg.Materials[dfm.ParseMaterial(name)] = dfm.MaterialRate{
			CostPerKg:   m.CostPerKg,
			DensityGCM3: m.DensityGCM3,
			MinWallMM:   m.MinWallMM,
		}
	}
	for name, p := range c.Processes {
		cfg.Processes[dfm.ParseProcess(name)] = dfm.ProcessRate{
			SetupCost:   p.SetupCost,
			PerPartCost: p.PerPartCost,
			HourlyRate:  p.HourlyRate,
		}
	}
	if len(c.IssueCostImpact) > 0 {
		impact := dfm.DefaultConfig().IssueCostImpact
		for sev, v := range c.IssueCostImpact {
			impact[dfm.Severity(sev)] = v
		}
		cfg.IssueCostImpact = impact
	}
	return cfg
}

// NewOrchestrator 组装本地引擎与远端客户端
func NewOrchestrator(engineCfg config.EngineConfig, remoteCfg config.RemoteConfig, log logger.Logger) *fallback.Orchestrator {
	engine := dfm.NewEngine(EngineConfig(engineCfg))

	// 注意：不能把 nil *HTTPRemote 赋给接口
	var remote fallback.RemoteAnalyzer
	if remoteCfg.Endpoint != "" {
		remote = fallback.NewHTTPRemote(remoteCfg.Endpoint, remoteCfg.APIKey, remoteCfg.CallTimeout)
	}

	return fallback.NewOrchestrator(engine, remote, fallback.Config{
		HealthTimeout: remoteCfg.HealthTimeout,
		CallTimeout:   remoteCfg.CallTimeout,
	}, log)
}
