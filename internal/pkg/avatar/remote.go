package avatar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
)

// RemoteFolder 远程存储中头像所在的目录
const RemoteFolder = "Avatars"

// ObjectStorage 远程对象存储（OSS / S3）
type ObjectStorage interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

// RemoteStore 把头像上传到对象存储，每个用户固定一个 key，重复上传直接覆盖
type RemoteStore struct {
	storage ObjectStorage
	now     func() time.Time
}

func NewRemoteStore(storage ObjectStorage) *RemoteStore {
	return &RemoteStore{
		storage: storage,
		now:     time.Now,
	}
}

// Put 上传后无论成败都删除临时文件
func (s *RemoteStore) Put(ctx context.Context, user *model.User, upload Upload) (*Avatar, error) {
	defer func() {
		if err := os.Remove(upload.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(ctx).Warn("failed to remove temp avatar", "path", upload.Path, "error", err)
		}
	}()

	data, err := os.ReadFile(upload.Path)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(user)
	url, err := s.storage.Upload(ctx, key, data, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	// 同一个 key 覆盖上传，加版本参数让客户端拿到新图
	return &Avatar{
		URL:      fmt.Sprintf("%s?v=%d", url, s.now().Unix()),
		RemoteID: key,
	}, nil
}

func (s *RemoteStore) Discard(ctx context.Context, previous, current Avatar) {
	if previous.RemoteID == "" || previous.RemoteID == current.RemoteID {
		return
	}
	if err := s.storage.Delete(ctx, previous.RemoteID); err != nil {
		logger.FromContext(ctx).Warn("failed to delete old avatar", "object_key", previous.RemoteID, "error", err)
	}
}

// ObjectKey 用户头像在对象存储中的 key：沿用已有的 key，否则为 Avatars/user-<id>
func ObjectKey(user *model.User) string {
	if user.AvatarRemoteID != nil && strings.HasPrefix(*user.AvatarRemoteID, RemoteFolder+"/") {
		return *user.AvatarRemoteID
	}
	return fmt.Sprintf("%s/user-%d", RemoteFolder, user.ID)
}
