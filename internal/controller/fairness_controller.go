package controller

import (
	"github.com/gin-gonic/gin"

	"examprep_backend/internal/model"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

type FairnessController struct {
	Service *service.FairnessService
	Export  *service.ExportService
}

func NewFairnessController(svc *service.FairnessService, export *service.ExportService) *FairnessController {
	return &FairnessController{Service: svc, Export: export}
}

// @Summary 记录公平性样本
// @Tags 公平性
// @Accept json
// @Produce json
// @Param body body model.FairnessSampleRequest true "样本"
// @Success 201 {object} util.Response
// @Router /api/fairness/samples [post]
func (c *FairnessController) RecordSample(ctx *gin.Context) {
	var req model.FairnessSampleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.RecordSample(ctx.Request.Context(), req.ExamCode, req.Subject, req.GroupCode, req.Outcome); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// @Summary 公平性报告
// @Description 分组均值与差异度（纳入组 max-min）；样本不足的组只报告计数
// @Tags 公平性
// @Produce json
// @Param examCode path string true "考试代码"
// @Param subject path string true "科目"
// @Success 200 {object} util.Response{data=model.FairnessReport}
// @Router /api/fairness/{examCode}/{subject} [get]
func (c *FairnessController) GetReport(ctx *gin.Context) {
	report, err := c.Service.Report(ctx.Request.Context(), ctx.Param("examCode"), ctx.Param("subject"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 导出全部公平性报告 (xlsx)
// @Tags 公平性
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/fairness/export [post]
func (c *FairnessController) ExportReports(ctx *gin.Context) {
	url, err := c.Export.ExportFairnessReports(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
