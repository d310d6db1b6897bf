package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"examprep_backend/docs"
	"examprep_backend/internal/config"
	"examprep_backend/internal/middleware"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（学习端调用，无需登录）
	a.registerPublicRoutes(router, c)

	// 2. 管理端路由
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/admin/login", c.auth.AdminLogin)

		// 作答事件与掌握状态
		public.POST("/interactions", c.interaction.SubmitInteraction)
		public.GET("/students/:studentId/mastery", c.interaction.GetStudentStates)
		public.GET("/students/:studentId/history", c.interaction.GetStudentHistory)

		// 时间分配
		public.POST("/allocations", c.allocation.AllocateTime)

		// 标定换算（只读，默认恒等）
		public.GET("/calibration/:examCode/:subject", c.calibration.Apply)

		// 公平性样本与报告
		public.POST("/fairness/samples", c.fairness.RecordSample)
		public.GET("/fairness/:examCode/:subject", c.fairness.GetReport)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(util.RoleAdmin))
	{
		// 概念参数
		admin.PUT("/concepts", c.admin.UpsertConceptParameter)
		admin.GET("/concepts", c.admin.ListConceptParameters)

		// 考试配置
		admin.PUT("/exams", c.admin.UpsertExamConfig)
		admin.GET("/exams", c.admin.ListExamConfigs)

		// 标定管理
		admin.POST("/calibration/:examCode/:subject/fit", c.calibration.Fit)
		admin.GET("/calibration", c.calibration.List)
		admin.POST("/jobs/calibration-refit", c.admin.TriggerRefit)

		// 迁移图与导出
		admin.POST("/graph/reload", c.admin.ReloadGraph)
		admin.POST("/fairness/export", c.fairness.ExportReports)
	}
}
