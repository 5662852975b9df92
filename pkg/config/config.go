package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config worker 全局配置
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Remote  RemoteConfig   `mapstructure:"remote"`
	Engine  EngineConfig   `mapstructure:"engine"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Env         string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`
	LogEncoding string `mapstructure:"log_encoding"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"` // 结果通知频道前缀
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	Queue     string `mapstructure:"queue"`
}

// RemoteConfig 远端 DFM 服务配置，endpoint 为空表示只用本地引擎
type RemoteConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	APIKey        string        `mapstructure:"api_key"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	CallTimeout   time.Duration `mapstructure:"call_timeout"`
}

const (
	minCallTimeout = 10 * time.Second
	maxCallTimeout = 30 * time.Second
)

// Validate 校验远端超时
func (r RemoteConfig) Validate() error {
	if r.HealthTimeout <= 0 {
		return fmt.Errorf("remote.health_timeout must be positive")
	}
	if r.CallTimeout < minCallTimeout || r.CallTimeout > maxCallTimeout {
		return fmt.Errorf("remote.call_timeout must be within [%s, %s], got %s", minCallTimeout, maxCallTimeout, r.CallTimeout)
	}
	return nil
}

// MaterialRate 材料费率（每 kg）
type MaterialRate struct {
	CostPerKg   float64 `mapstructure:"cost_per_kg"`
	DensityGCM3 float64 `mapstructure:"density_g_cm3"`
	MinWallMM   float64 `mapstructure:"min_wall_mm"`
}

// ProcessRate 工艺费率
type ProcessRate struct {
	SetupCost   float64 `mapstructure:"setup_cost"`
	PerPartCost float64 `mapstructure:"per_part_cost"`
	HourlyRate  float64 `mapstructure:"hourly_rate"`
}

// EngineConfig 本地引擎费率，未配置的表项使用内置默认值
type EngineConfig struct {
	Currency        string                  `mapstructure:"currency"`
	Materials       map[string]MaterialRate `mapstructure:"materials"`
	Processes       map[string]ProcessRate  `mapstructure:"processes"`
	IssueCostImpact map[string]float64      `mapstructure:"issue_cost_impact"`
}

// Validate 费率不能为负
func (e EngineConfig) Validate() error {
	for name, m := range e.Materials {
		if m.CostPerKg < 0 || m.DensityGCM3 <= 0 {
			return fmt.Errorf("engine.materials.%s: cost must be >= 0 and density > 0", name)
		}
	}
	for name, p := range e.Processes {
		if p.SetupCost < 0 || p.PerPartCost < 0 || p.HourlyRate < 0 {
			return fmt.Errorf("engine.processes.%s: rates must be >= 0", name)
		}
	}
	for sev, v := range e.IssueCostImpact {
		if v < 0 {
			return fmt.Errorf("engine.issue_cost_impact.%s must be >= 0", sev)
		}
	}
	return nil
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取间隔
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// SetSharedDefaults 各进程共用的默认值
func SetSharedDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_encoding", "json")
	v.SetDefault("redis.channel_prefix", "analysis:result:")
	v.SetDefault("lmstfy.queue", "dfm_analysis")
	v.SetDefault("remote.health_timeout", 2*time.Second)
	v.SetDefault("remote.call_timeout", 10*time.Second)
	v.SetDefault("engine.currency", "INR")
}

// ReadInto 读取 YAML 配置并解析到 out；环境变量 MFG_<SECTION>_<KEY> 覆盖文件值
func ReadInto(v *viper.Viper, configPath string, out interface{}) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MFG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config failed: %w", err)
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("unmarshal config failed: %w", err)
	}
	return nil
}

// Load 加载 worker 配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	SetSharedDefaults(v)

	var cfg Config
	if err := ReadInto(v, configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for i, w := range c.Workers {
		if w.QueueName == "" {
			return fmt.Errorf("workers[%d].queue_name is required", i)
		}
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.Engine.Validate()
}
