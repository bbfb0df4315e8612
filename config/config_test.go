package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("AVAIL_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Availability.WeekdayStartHour != 8 || cfg.Availability.WeekdayEndHour != 20 {
		t.Errorf("工作日窗口默认值错误: %+v", cfg.Availability)
	}
	if cfg.Availability.WeekendStartHour != 9 || cfg.Availability.WeekendEndHour != 17 {
		t.Errorf("周末窗口默认值错误: %+v", cfg.Availability)
	}
	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Errorf("期望 session.idle_ttl=30m，实际=%v", cfg.Session.IdleTTL)
	}
	if cfg.Catalog.CacheTTL != 10*time.Minute {
		t.Errorf("期望 catalog.cache_ttl=10m，实际=%v", cfg.Catalog.CacheTTL)
	}
}

func TestLoad_EnvOverridesWindow(t *testing.T) {
	t.Setenv("AVAIL_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("AVAIL_AVAILABILITY_WEEKEND_END_HOUR", "18")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Availability.WeekendEndHour != 18 {
		t.Errorf("期望环境变量覆盖为 18，实际=%d", cfg.Availability.WeekendEndHour)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AVAIL_AUTH_JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("缺少 jwt_secret 时应返回错误")
	}
}

func TestValidate_InvertedWindow(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
		Session: SessionConfig{IdleTTL: time.Minute, MaxSessions: 10},
		Availability: AvailabilityConfig{
			WeekdayStartHour: 20, WeekdayEndHour: 8,
			WeekendStartHour: 9, WeekendEndHour: 17,
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("倒置的窗口应校验失败")
	}

	cfg.Availability.WeekdayStartHour, cfg.Availability.WeekdayEndHour = 8, 20
	if err := cfg.Validate(); err != nil {
		t.Fatalf("合法配置应通过校验: %v", err)
	}
}
