package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"examprep_backend/internal/graph"
	"examprep_backend/internal/util"
)

type HealthController struct {
	DB          *gorm.DB
	GraphHolder *graph.Holder
}

func NewHealthController(db *gorm.DB, graphHolder *graph.Holder) *HealthController {
	return &HealthController{DB: db, GraphHolder: graphHolder}
}

// @Summary 健康检查
// @Description 检查服务与依赖状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":      "up",
			"transferGraph": gin.H{"edges": c.GraphHolder.Get().EdgeCount()},
		},
	})
}
