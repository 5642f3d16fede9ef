package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/api/handler"
	"github.com/minamirinkan/sample-sub000/internal/api/middleware"
	"github.com/minamirinkan/sample-sub000/pkg/jwt"
	"github.com/minamirinkan/sample-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时写接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	writeLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window)
	writeRoles := middleware.RoleAuth(middleware.RoleAdmin, middleware.RoleStaff)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 节次表
		v1.GET("/periods", h.Period.GetPeriods)

		// 时间表模块
		timetables := v1.Group("/timetables")
		{
			timetables.GET("", h.Timetable.GetTimetable)
			timetables.PUT("", writeRoles, writeLimit, h.Timetable.SaveTimetable)
			timetables.POST("/move", h.Timetable.Move)
			timetables.POST("/redirect", h.Timetable.Redirect)
			timetables.POST("/restore", h.Timetable.Restore)
			timetables.POST("/remove", h.Timetable.RemoveEntry)
			timetables.POST("/rows", h.Timetable.AddRow)
			timetables.POST("/rows/remove", h.Timetable.RemoveRow)
			timetables.POST("/enrollments", writeRoles, writeLimit, h.Timetable.SeedEnrollment)
		}

		// 月历模块
		calendar := v1.Group("/calendar")
		{
			calendar.GET("/students/:id", h.Calendar.StudentEvents)
			calendar.GET("/teachers/:code", h.Calendar.TeacherEvents)
		}

		// 费用模块
		billing := v1.Group("/billing")
		{
			billing.POST("/fee-code", h.Billing.DeriveFeeCode)
			billing.GET("/tuition", h.Billing.SearchTuition)
			billing.POST("/line-items", writeRoles, h.Billing.BuildLineItems)
		}

		// 导出模块（可通过 feature.export_enabled 关闭）
		if cfg.Feature.ExportEnabled {
			export := v1.Group("/export")
			{
				export.GET("/timetable", h.Export.ExportTimetable)
			}
		}
	}

	return r
}
