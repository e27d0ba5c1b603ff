package handler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/config"
	"github.com/qs3c/account_go_server/internal/api/middleware"
	"github.com/qs3c/account_go_server/internal/model/dto"
	"github.com/qs3c/account_go_server/internal/pkg/avatar"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/pkg/response"
	"github.com/qs3c/account_go_server/internal/service"
)

// 允许上传的头像格式
var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UserHandler struct {
	userService *service.UserService
	cfg         *config.AvatarConfig
}

func NewUserHandler(userService *service.UserService, cfg *config.AvatarConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		cfg:         cfg,
	}
}

// Current 获取当前用户信息
// GET /api/users/current
func (h *UserHandler) Current(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.AuthError(c, "")
			return
		}
		_ = c.Error(err)
		return
	}

	response.SuccessUser(c, profile)
}

// UpdateAvatar 上传头像，表单字段 avatar
// PATCH /api/users/avatars
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		response.ParamError(c, "avatar file is required")
		return
	}

	if h.cfg.MaxSize > 0 && file.Size > h.cfg.MaxSize {
		response.ParamError(c, fmt.Sprintf("avatar must not exceed %d bytes", h.cfg.MaxSize))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		response.ParamError(c, "only jpg/png/gif/webp images are supported")
		return
	}

	tmpPath, err := h.saveTemp(file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// 成功时临时文件已被移走或删除，这里只兜底
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(c.Request.Context()).Warn("failed to remove temp upload", "path", tmpPath, "error", err)
		}
	}()

	resp, err := h.userService.UpdateAvatar(c.Request.Context(), user, avatar.Upload{
		Path:     tmpPath,
		Filename: file.Filename,
	})
	if err != nil {
		if errors.Is(err, avatar.ErrUnsupportedImage) {
			response.ParamError(c, "file is not a valid image")
			return
		}
		_ = c.Error(err)
		return
	}

	response.SuccessUser(c, resp)
}

// UpdateSubscription 修改订阅等级
// PATCH /api/users
func (h *UserHandler) UpdateSubscription(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.UpdateSubscription(c.Request.Context(), user, req.Subscription)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			response.ParamError(c, "subscription must be one of starter, pro, business")
			return
		}
		_ = c.Error(err)
		return
	}

	response.SuccessUser(c, info)
}

func (h *UserHandler) saveTemp(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.cfg.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.cfg.TempDir, "avatar-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return dst.Name(), nil
}
