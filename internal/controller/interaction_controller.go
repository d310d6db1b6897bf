package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"examprep_backend/internal/model"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

type InteractionController struct {
	Service *service.MasteryService
}

func NewInteractionController(svc *service.MasteryService) *InteractionController {
	return &InteractionController{Service: svc}
}

// @Summary 提交作答并更新掌握度
// @Description 一次作答触发完整管线：负载估计、BKT更新、一跳迁移、事件落日志、公平性累计和下一题时间预算
// @Tags 知识追踪
// @Accept json
// @Produce json
// @Param body body model.UpdateMasteryRequest true "作答事件"
// @Success 200 {object} util.Response{data=model.UpdateMasteryResult}
// @Router /api/interactions [post]
func (c *InteractionController) SubmitInteraction(ctx *gin.Context) {
	var req model.UpdateMasteryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.UpdateMastery(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 学生各概念掌握状态
// @Tags 知识追踪
// @Produce json
// @Param studentId path string true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/students/{studentId}/mastery [get]
func (c *InteractionController) GetStudentStates(ctx *gin.Context) {
	states, err := c.Service.StudentStates(ctx.Request.Context(), ctx.Param("studentId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, states)
}

// @Summary 学生作答历史（只读）
// @Tags 知识追踪
// @Produce json
// @Param studentId path string true "学生ID"
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/students/{studentId}/history [get]
func (c *InteractionController) GetStudentHistory(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	events, total, err := c.Service.StudentHistory(ctx.Request.Context(), ctx.Param("studentId"), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  events,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
