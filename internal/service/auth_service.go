package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/config"
	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/model/dto"
	"github.com/qs3c/account_go_server/internal/pkg/jwt"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/repository"
)

// bcrypt 可接受的最大密码字节数
const maxPasswordBytes = 72

// VerificationNotifier 发送邮箱验证邮件
type VerificationNotifier interface {
	SendVerifyEmail(ctx context.Context, token, to string) error
}

type AuthService struct {
	userRepo *repository.UserRepository
	notifier VerificationNotifier
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, notifier VerificationNotifier, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	subscription := req.Subscription
	if subscription == "" {
		subscription = model.SubscriptionStarter
	}
	if !model.ValidSubscription(subscription) {
		return nil, ErrInvalidSubscription
	}

	// bcrypt 按字节限制，binding 的 max 按字符计数
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken := uuid.NewString()
	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Subscription: subscription,
		AvatarURL:    GravatarURL(req.Email),
		Verified:     false,
		VerifyToken:  &verifyToken,
	}

	// 并发注册同一邮箱时由唯一索引兜底
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	// 发信失败不影响注册，用户可以重新发送验证邮件
	if err := s.notifier.SendVerifyEmail(ctx, verifyToken, user.Email); err != nil {
		logger.FromContext(ctx).Error("failed to send verification email",
			"user_id", user.ID,
			"error", err,
		)
	}

	return &dto.RegisterResponse{
		User: &dto.UserInfo{
			Email:        user.Email,
			Avatar:       user.AvatarURL,
			Subscription: user.Subscription,
		},
	}, nil
}

// Login 用户登录。邮箱不存在和密码错误返回同一个错误
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// 新 token 覆盖旧 token，之前签发的 token 随之失效
	if err := s.userRepo.UpdateToken(ctx, user.ID, &token); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User: &dto.UserInfo{
			Email:        user.Email,
			Subscription: user.Subscription,
		},
	}, nil
}

// Logout 清空当前会话 token
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.userRepo.UpdateToken(ctx, userID, nil)
}

// ResolveSession 校验 bearer token 并返回对应用户。
// 签名或有效期不对、用户不存在、与当前会话 token 不一致，都返回 ErrUnauthorized。
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if user.Token == nil || *user.Token != token {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// VerifyEmail 通过验证 token 完成邮箱验证，token 用过即清空
func (s *AuthService) VerifyEmail(ctx context.Context, verifyToken string) error {
	if verifyToken == "" {
		return ErrUserNotFound
	}

	user, err := s.userRepo.GetByVerifyToken(ctx, verifyToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		// 并发请求中另一方已经完成验证
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

// ResendVerification 用原有的验证 token 重新发送验证邮件
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Verified || user.VerifyToken == nil {
		return ErrAlreadyVerified
	}

	if err := s.notifier.SendVerifyEmail(ctx, *user.VerifyToken, user.Email); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// GravatarURL 注册时的默认头像
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=250&d=identicon", hex.EncodeToString(sum[:]))
}
