package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/internal/api/middleware"
	"github.com/qs3c/account_go_server/internal/model/dto"
	"github.com/qs3c/account_go_server/internal/pkg/response"
	"github.com/qs3c/account_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/users/signup
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ConflictError(c, "Email in use")
		case errors.Is(err, service.ErrInvalidSubscription):
			response.ParamError(c, "Invalid subscription")
		case errors.Is(err, service.ErrPasswordTooLong):
			response.ParamError(c, "Password must be at most 72 bytes")
		default:
			_ = c.Error(err)
		}
		return
	}

	response.Created(c, resp)
}

// Login 用户登录
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, "Email or password is wrong")
			return
		}
		_ = c.Error(err)
		return
	}

	response.OK(c, resp)
}

// Logout 退出登录
// POST /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}

// VerifyEmail 邮件中的验证链接
// GET /api/users/verify/:verificationToken
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	err := h.authService.VerifyEmail(c.Request.Context(), c.Param("verificationToken"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, "User not found")
			return
		}
		_ = c.Error(err)
		return
	}

	response.SuccessMessage(c, "Verification successful")
}

// ResendVerification 重新发送验证邮件
// POST /api/users/verify
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "missing required field email")
		return
	}

	err := h.authService.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, "User not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			response.ParamError(c, "Verification has already been passed")
		default:
			_ = c.Error(err)
		}
		return
	}

	response.SuccessData(c, dto.MessageData{Message: "Verification email sent"})
}
