package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/internal/model"
)

var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository 用户存储。邮箱唯一性最终由 users.email 上的唯一索引保证，
// 并发注册同一邮箱时后写入的一方会得到 ErrDuplicateEmail。
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("verify_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateToken 设置当前会话 token，传 nil 表示登出
func (r *UserRepository) UpdateToken(ctx context.Context, id int64, token *string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"token": token,
	})
}

// UpdateAvatar 更新头像地址，remoteID 为 nil 表示头像保存在本地
func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL string, remoteID *string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"avatar_url":       avatarURL,
		"avatar_remote_id": remoteID,
	})
}

// MarkVerified 验证通过：verified 置为 true 并清空 verify_token。
// 只匹配尚未验证的记录，已验证的账号不会被再次修改。
func (r *UserRepository) MarkVerified(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]interface{}{
			"verified":     true,
			"verify_token": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id int64, subscription string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"subscription": subscription,
	})
}

// ListLocalAvatars 返回所有以 prefix 开头的头像地址，用于清理孤立的本地头像文件
func (r *UserRepository) ListLocalAvatars(ctx context.Context, prefix string) ([]string, error) {
	var avatars []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("avatar_url LIKE ?", prefix+"%").
		Pluck("avatar_url", &avatars).Error
	return avatars, err
}

func (r *UserRepository) updateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}
