// Package config 负责加载应用配置。
// 先通过 godotenv 读取可选的 .env 文件，再从环境变量填充配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App        AppConfig
	Log        LogConfig
	Thresholds ThresholdsConfig
	Cache      CacheConfig
	Redis      RedisConfig
}

// AppConfig 应用基本信息
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string
	Encoding string
}

// ThresholdsConfig 低库存阈值文件配置
type ThresholdsConfig struct {
	File string
}

// CacheConfig 报表缓存配置
type CacheConfig struct {
	Enabled bool
	Type    string // memory 或 redis
	TTL     time.Duration
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Load 加载配置，.env 文件不存在时忽略
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getenv("APP_NAME", "stockroom"),
			Env:     getenv("APP_ENV", "dev"),
			Version: getenv("APP_VERSION", "0.1.0"),
		},
		Log: LogConfig{
			Level:    getenv("LOG_LEVEL", "info"),
			Encoding: getenv("LOG_ENCODING", ""),
		},
		Thresholds: ThresholdsConfig{
			File: getenv("THRESHOLDS_FILE", "config.json"),
		},
		Cache: CacheConfig{
			Type: getenv("CACHE_TYPE", "memory"),
		},
		Redis: RedisConfig{
			Host:     getenv("REDIS_HOST", "localhost"),
			Password: getenv("REDIS_PASSWORD", ""),
		},
	}

	var err error
	if cfg.Cache.Enabled, err = getenvBool("CACHE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = getenvDuration("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.Redis.Port, err = getenvInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("APP_NAME must not be empty")
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_TYPE must be memory or redis, got %q", c.Cache.Type)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive when cache is enabled")
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("REDIS_PORT out of range: %d", c.Redis.Port)
	}
	return nil
}

// RedisAddr 返回 host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
