package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/model/dto"
	"github.com/qs3c/account_go_server/internal/pkg/avatar"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/repository"
)

// ImageNormalizer 把上传的图片处理成标准尺寸，返回处理后的 Content-Type
type ImageNormalizer interface {
	Normalize(path string) (string, error)
}

type UserService struct {
	userRepo  *repository.UserRepository
	processor ImageNormalizer
	store     avatar.Store
}

func NewUserService(userRepo *repository.UserRepository, processor ImageNormalizer, store avatar.Store) *UserService {
	return &UserService{
		userRepo:  userRepo,
		processor: processor,
		store:     store,
	}
}

// GetProfile 重新读取用户记录，记录已不存在时返回 ErrUserNotFound
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	verified := user.Verified
	return &dto.UserInfo{
		Email:        user.Email,
		Avatar:       user.AvatarURL,
		Subscription: user.Subscription,
		Verified:     &verified,
	}, nil
}

// UpdateAvatar 处理上传的临时文件并替换用户头像。
// 新头像保存成功后才更新用户记录，旧头像在记录更新后清理。
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, upload avatar.Upload) (*dto.AvatarResponse, error) {
	contentType, err := s.processor.Normalize(upload.Path)
	if err != nil {
		removeTemp(ctx, upload.Path)
		return nil, err
	}
	upload.ContentType = contentType

	previous := avatar.FromUser(user)

	current, err := s.store.Put(ctx, user, upload)
	if err != nil {
		removeTemp(ctx, upload.Path)
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, user.ID, current.URL, current.RemoteIDPtr()); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	s.store.Discard(ctx, previous, *current)

	logger.FromContext(ctx).Info("avatar updated", "user_id", user.ID, "avatar", current.URL)

	return &dto.AvatarResponse{AvatarURL: current.URL}, nil
}

// UpdateSubscription 修改订阅等级
func (s *UserService) UpdateSubscription(ctx context.Context, user *model.User, level string) (*dto.UserInfo, error) {
	if !model.ValidSubscription(level) {
		return nil, ErrInvalidSubscription
	}

	if err := s.userRepo.UpdateSubscription(ctx, user.ID, level); err != nil {
		return nil, err
	}

	return &dto.UserInfo{
		Email:        user.Email,
		Subscription: level,
	}, nil
}

func removeTemp(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.FromContext(ctx).Warn("failed to remove temp upload", "path", path, "error", err)
	}
}
