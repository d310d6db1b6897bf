package controller

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"examprep_backend/internal/engine"
	"examprep_backend/internal/graph"
	"examprep_backend/internal/model"
	"examprep_backend/internal/repository"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

// AdminController 概念参数与考试配置的管理入口。热路径不经过这里，
// 参数改动只对之后的更新生效（历史掌握状态不回写）。
type AdminController struct {
	ParamRepo   *repository.ConceptParameterRepository
	ExamRepo    *repository.ExamConfigRepository
	Calibration *service.CalibrationService
	GraphHolder *graph.Holder
	Neo4j       *graph.Neo4jClient
}

func NewAdminController(
	paramRepo *repository.ConceptParameterRepository,
	examRepo *repository.ExamConfigRepository,
	calibration *service.CalibrationService,
	graphHolder *graph.Holder,
	neo4jClient *graph.Neo4jClient,
) *AdminController {
	return &AdminController{
		ParamRepo:   paramRepo,
		ExamRepo:    examRepo,
		Calibration: calibration,
		GraphHolder: graphHolder,
		Neo4j:       neo4jClient,
	}
}

// @Summary 新建/更新概念参数
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.ConceptParameter true "概念参数"
// @Success 200 {object} util.Response{data=model.ConceptParameter}
// @Router /api/admin/concepts [put]
func (c *AdminController) UpsertConceptParameter(ctx *gin.Context) {
	var param model.ConceptParameter
	if err := ctx.ShouldBindJSON(&param); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if param.ConceptID == "" {
		util.BadRequest(ctx, "conceptId must not be empty")
		return
	}

	// 入库前就拒绝不自洽的参数，热路径永远读不到坏配置
	params := engine.Params{
		Learn:  param.LearnRate,
		Slip:   param.SlipRate,
		Guess:  param.GuessRate,
		Forget: param.ForgettingRate,
	}
	if err := params.Validate(); err != nil {
		util.RespondError(ctx, err)
		return
	}

	if err := c.ParamRepo.Upsert(ctx.Request.Context(), &param); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, param)
}

// @Summary 概念参数列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param subject query string false "科目过滤"
// @Success 200 {object} util.Response
// @Router /api/admin/concepts [get]
func (c *AdminController) ListConceptParameters(ctx *gin.Context) {
	params, err := c.ParamRepo.List(ctx.Request.Context(), ctx.Query("subject"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, params)
}

// @Summary 新建/更新考试配置
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.ExamConfig true "考试配置"
// @Success 200 {object} util.Response{data=model.ExamConfig}
// @Router /api/admin/exams [put]
func (c *AdminController) UpsertExamConfig(ctx *gin.Context) {
	var cfg model.ExamConfig
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if cfg.ExamCode == "" || cfg.MaxQuestionTimeMs <= 0 || cfg.DefaultQuestionTimeMs <= 0 {
		util.BadRequest(ctx, "examCode, maxQuestionTimeMs and defaultQuestionTimeMs are required")
		return
	}
	if cfg.DefaultQuestionTimeMs > cfg.MaxQuestionTimeMs {
		util.BadRequest(ctx, "defaultQuestionTimeMs must not exceed maxQuestionTimeMs")
		return
	}

	if err := c.ExamRepo.Upsert(ctx.Request.Context(), &cfg); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cfg)
}

// @Summary 考试配置列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/exams [get]
func (c *AdminController) ListExamConfigs(ctx *gin.Context) {
	configs, err := c.ExamRepo.List(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, configs)
}

// @Summary 从 Neo4j 重载概念迁移图
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/graph/reload [post]
func (c *AdminController) ReloadGraph(ctx *gin.Context) {
	if c.Neo4j == nil {
		util.Error(ctx, 409, "concept graph store is not enabled")
		return
	}

	g, err := c.Neo4j.LoadGraph(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	c.GraphHolder.Replace(g)
	util.Success(ctx, gin.H{"edges": g.EdgeCount()})
}

// @Summary 手动触发温度重拟合
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param windowDays query int false "事件窗口天数"
// @Success 202 {object} util.Response
// @Router /api/admin/jobs/calibration-refit [post]
func (c *AdminController) TriggerRefit(ctx *gin.Context) {
	windowDays := 30
	if v := ctx.Query("windowDays"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			windowDays = parsed
		}
	}

	// 批任务异步跑，不挂在请求上下文上（请求结束会取消）
	go c.Calibration.RefitFromEvents(context.Background(), windowDays)
	ctx.JSON(202, util.Response{Code: 202, Message: "refit scheduled"})
}
