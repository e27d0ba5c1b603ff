package testutil

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/internal/model"
)

// TestPassword TestUser 默认使用的明文密码
const TestPassword = "password123"

// TestUser 创建测试用户，默认已验证、无会话 token
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &model.User{
		Email:        fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		PasswordHash: string(hash),
		Subscription: model.SubscriptionStarter,
		AvatarURL:    "https://www.gravatar.com/avatar/test?s=250",
		Verified:     true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithSubscription 设置订阅等级
func WithSubscription(level string) func(*model.User) {
	return func(u *model.User) {
		u.Subscription = level
	}
}

// WithToken 设置当前会话 token
func WithToken(token string) func(*model.User) {
	return func(u *model.User) {
		u.Token = &token
	}
}

// WithAvatar 设置头像地址，remoteID 为空表示本地头像
func WithAvatar(avatarURL, remoteID string) func(*model.User) {
	return func(u *model.User) {
		u.AvatarURL = avatarURL
		if remoteID != "" {
			u.AvatarRemoteID = &remoteID
		}
	}
}

// Unverified 设置为未验证并带上验证 token
func Unverified(verifyToken string) func(*model.User) {
	return func(u *model.User) {
		u.Verified = false
		u.VerifyToken = &verifyToken
	}
}
