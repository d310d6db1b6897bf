package controller

import (
	"github.com/gin-gonic/gin"

	"examprep_backend/internal/service"
	"examprep_backend/internal/util"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// AdminLoginRequest 管理端登录请求
// swagger:model AdminLoginRequest
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin godoc
// @Summary 管理端登录
// @Description 校验管理凭据并签发访问令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body AdminLoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭据无效"
// @Router /api/admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.AdminLogin(req.Password)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}
