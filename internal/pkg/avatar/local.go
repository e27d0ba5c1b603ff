package avatar

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
)

// LocalStore 把头像放在 <publicDir>/<folder> 下，由静态文件服务对外提供
type LocalStore struct {
	publicDir string
	folder    string
	now       func() time.Time
}

func NewLocalStore(publicDir, folder string) *LocalStore {
	return &LocalStore{
		publicDir: publicDir,
		folder:    folder,
		now:       time.Now,
	}
}

func (s *LocalStore) Put(ctx context.Context, user *model.User, upload Upload) (*Avatar, error) {
	dir := filepath.Join(s.publicDir, s.folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), fileName(upload))
	if err := moveFile(upload.Path, filepath.Join(dir, name)); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	return &Avatar{URL: path.Join(s.folder, name)}, nil
}

// Discard 只删除位于头像目录下的旧文件，默认头像等外部地址不处理
func (s *LocalStore) Discard(ctx context.Context, previous, current Avatar) {
	if previous.URL == "" || previous.URL == current.URL {
		return
	}
	// 旧头像在对象存储上（切换过后端），本地存储删不了，留给运维处理
	if previous.RemoteID != "" {
		logger.FromContext(ctx).Warn("previous avatar is a remote object, not removed",
			"object_key", previous.RemoteID,
			"url", previous.URL,
		)
		return
	}
	if !strings.HasPrefix(previous.URL, s.LocalPrefix()) {
		return
	}

	old := filepath.Join(s.publicDir, filepath.FromSlash(previous.URL))
	if err := os.Remove(old); err != nil {
		logger.FromContext(ctx).Warn("failed to remove old avatar", "path", old, "error", err)
	}
}

// LocalPrefix 本地头像地址的公共前缀
func (s *LocalStore) LocalPrefix() string {
	return s.folder + "/"
}

// fileName 原始文件名去掉目录和空白，扩展名按实际编码格式修正
func fileName(upload Upload) string {
	base := filepath.Base(upload.Filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Join(strings.Fields(base), "_")
	if base == "" || base == "." {
		base = "avatar"
	}
	return base + extensionFor(upload.ContentType)
}

func extensionFor(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// moveFile 优先 rename，跨文件系统时退化为复制
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
