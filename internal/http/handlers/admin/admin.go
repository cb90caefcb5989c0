package admin

import (
	"errors"
	"time"

	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminProfile 管理员摘要，roles 为当前生效的角色
type AdminProfile struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string       `json:"token"`
	User      AdminProfile `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, response.CodeUnauthorized, "error.admin_login_invalid", nil)
		return
	case err != nil:
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}
	requestLog(c).Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{
		Token:     token,
		User:      h.adminProfile(c, admin),
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// adminProfile 角色读取失败不影响登录
func (h *Handler) adminProfile(c *gin.Context, admin *models.Admin) AdminProfile {
	profile := AdminProfile{ID: admin.ID, Username: admin.Username, IsSuper: admin.IsSuper, Roles: []string{}}
	if h.AuthzService == nil {
		return profile
	}
	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		requestLog(c).Warnw("admin_login_roles_unavailable", "admin_id", admin.ID, "error", err)
		return profile
	}
	profile.Roles = roles
	return profile
}
