package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"examprep_backend/internal/model"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

type CalibrationController struct {
	Service *service.CalibrationService
}

func NewCalibrationController(svc *service.CalibrationService) *CalibrationController {
	return &CalibrationController{Service: svc}
}

// @Summary 拟合温度标定
// @Description 对 (examCode, subject) 键用 (logits, labels) 批量拟合温度；单一类别标签会被明确拒绝
// @Tags 标定
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param examCode path string true "考试代码"
// @Param subject path string true "科目"
// @Param body body model.CalibrationFitRequest true "拟合批次"
// @Success 200 {object} util.Response{data=model.CalibrationEntry}
// @Router /api/admin/calibration/{examCode}/{subject}/fit [post]
func (c *CalibrationController) Fit(ctx *gin.Context) {
	var req model.CalibrationFitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.Service.Fit(ctx.Request.Context(), ctx.Param("examCode"), ctx.Param("subject"), req.Logits, req.Labels)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, entry)
}

// @Summary 原始分数换算标定概率
// @Description 键未标定时温度为 1，返回原值
// @Tags 标定
// @Produce json
// @Param examCode path string true "考试代码"
// @Param subject path string true "科目"
// @Param raw query number true "原始概率分数"
// @Success 200 {object} util.Response
// @Router /api/calibration/{examCode}/{subject} [get]
func (c *CalibrationController) Apply(ctx *gin.Context) {
	raw, err := strconv.ParseFloat(ctx.Query("raw"), 64)
	if err != nil {
		util.BadRequest(ctx, "raw must be a number")
		return
	}
	if raw < 0 || raw > 1 {
		util.BadRequest(ctx, "raw must be within [0,1]")
		return
	}

	calibrated := c.Service.Apply(ctx.Request.Context(), ctx.Param("examCode"), ctx.Param("subject"), raw)
	util.Success(ctx, gin.H{
		"examCode":   ctx.Param("examCode"),
		"subject":    ctx.Param("subject"),
		"raw":        raw,
		"calibrated": calibrated,
	})
}

// @Summary 全部标定条目
// @Tags 标定
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/calibration [get]
func (c *CalibrationController) List(ctx *gin.Context) {
	entries, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
