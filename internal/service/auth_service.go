package service

import (
	"golang.org/x/crypto/bcrypt"

	"examprep_backend/internal/config"
	"examprep_backend/internal/util"
)

// AuthService 管理端登录。引擎不做用户体系（外部协作方负责），这里只校验
// 单一管理凭据并签发角色令牌，保护标定/参数/导出等管理接口。
type AuthService struct {
	Config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Config: cfg}
}

func (s *AuthService) AdminLogin(password string) (string, error) {
	if s.Config.Admin.PasswordHash == "" {
		return "", util.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Config.Admin.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredential
	}
	return util.GenerateJWT("admin", util.RoleAdmin, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
}
