package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=100"`
	Password     string `json:"password" binding:"required,min=6,max=72"`
	Subscription string `json:"subscription" binding:"omitempty,oneof=starter pro business"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResendVerificationRequest 重新发送验证邮件请求
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateSubscriptionRequest 修改订阅等级请求
type UpdateSubscriptionRequest struct {
	Subscription string `json:"subscription" binding:"required"`
}

// UserInfo 用户公开信息（返回给前端，不含密码和 token）
type UserInfo struct {
	Email        string `json:"email"`
	Avatar       string `json:"avatar,omitempty"`
	Subscription string `json:"subscription"`
	Verified     *bool  `json:"verified,omitempty"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	User *UserInfo `json:"user"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// AvatarResponse 头像更新响应
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// MessageData 只带消息的数据体
type MessageData struct {
	Message string `json:"message"`
}
