package controller

import (
	"github.com/gin-gonic/gin"

	"examprep_backend/internal/model"
	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

type AllocationController struct {
	Service *service.AllocationService
}

func NewAllocationController(svc *service.AllocationService) *AllocationController {
	return &AllocationController{Service: svc}
}

// @Summary 计算下一题时间预算
// @Description 基础时长经难度/掌握/压力/疲劳逐项调整后，最终被考试硬上限钳制
// @Tags 时间分配
// @Accept json
// @Produce json
// @Param body body model.AllocateTimeRequest true "分配请求"
// @Success 200 {object} util.Response{data=model.TimeAllocation}
// @Router /api/allocations [post]
func (c *AllocationController) AllocateTime(ctx *gin.Context) {
	var req model.AllocateTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	allocation, err := c.Service.AllocateTime(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, allocation)
}
