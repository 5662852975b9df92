package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	shared "mfgcopilot/pkg/config"
)

// Config apiserver 配置
type Config struct {
	App    shared.AppConfig    `mapstructure:"app"`
	Server ServerConfig        `mapstructure:"server"`
	Auth   AuthConfig          `mapstructure:"auth"`
	Remote shared.RemoteConfig `mapstructure:"remote"`
	Engine shared.EngineConfig `mapstructure:"engine"`
	MySQL  shared.MySQLConfig  `mapstructure:"mysql"`
	Redis  shared.RedisConfig  `mapstructure:"redis"`
	Lmstfy shared.LmstfyConfig `mapstructure:"lmstfy"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxWaitSeconds  int           `mapstructure:"max_wait_seconds"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
}

// AuthConfig 为空表示开发模式，不校验 API Key
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// Load 从配置文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	shared.SetSharedDefaults(v)
	v.SetDefault("app.name", "mfg-copilot-api")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 45*time.Second)
	v.SetDefault("server.max_wait_seconds", 30)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_burst", 20)

	var cfg Config
	if err := shared.ReadInto(v, configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load("config/apiserver.yaml")
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy host is required")
	}
	if c.Lmstfy.Token == "" {
		return fmt.Errorf("lmstfy token is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0")
	}
	if c.Server.MaxWaitSeconds < 0 {
		return fmt.Errorf("server.max_wait_seconds must be >= 0")
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.Engine.Validate()
}

// DevMode 未配置 API Key
func (c *Config) DevMode() bool {
	return len(c.Auth.APIKeys) == 0
}
