package model

import (
	"time"
)

// 订阅等级
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// ValidSubscription 判断订阅等级是否合法
func ValidSubscription(level string) bool {
	switch level {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	default:
		return false
	}
}

type User struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Subscription   string    `gorm:"size:20;default:starter" json:"subscription"`
	AvatarURL      string    `gorm:"size:500" json:"avatar_url"`
	AvatarRemoteID *string   `gorm:"size:255" json:"-"`
	Token          *string   `gorm:"size:512" json:"-"`
	Verified       bool      `gorm:"default:false" json:"verified"`
	VerifyToken    *string   `gorm:"size:100;index" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
