package avatar

import (
	"context"

	"github.com/qs3c/account_go_server/internal/model"
)

// Avatar 头像引用。RemoteID 为空表示保存在本地磁盘。
type Avatar struct {
	URL      string
	RemoteID string
}

// FromUser 取出用户当前的头像引用
func FromUser(user *model.User) Avatar {
	a := Avatar{URL: user.AvatarURL}
	if user.AvatarRemoteID != nil {
		a.RemoteID = *user.AvatarRemoteID
	}
	return a
}

// RemoteIDPtr 方便写入可空字段
func (a Avatar) RemoteIDPtr() *string {
	if a.RemoteID == "" {
		return nil
	}
	id := a.RemoteID
	return &id
}

// Upload 已经处理好的临时文件
type Upload struct {
	Path        string
	Filename    string
	ContentType string
}

// Store 头像存储后端。
// Put 必须在新头像持久化成功后才返回；Discard 在用户记录更新之后调用，
// 负责清理旧头像，失败只记录日志。
type Store interface {
	Put(ctx context.Context, user *model.User, upload Upload) (*Avatar, error)
	Discard(ctx context.Context, previous, current Avatar)
}
