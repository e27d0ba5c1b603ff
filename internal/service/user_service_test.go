package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/pkg/avatar"
	"github.com/qs3c/account_go_server/internal/repository"
	"github.com/qs3c/account_go_server/internal/testutil"
)

func setupUserService(t *testing.T, store avatar.Store) (*UserService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewUserService(repository.NewUserRepository(db), avatar.NewProcessor(250, "cover"), store), db
}

func writeTestImage(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "upload-tmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, user *model.User, upload avatar.Upload) (*avatar.Avatar, error) {
	return nil, errors.New("bucket unavailable")
}

func (failingStore) Discard(ctx context.Context, previous, current avatar.Avatar) {}

func TestUserService_GetProfile(t *testing.T) {
	service, db := setupUserService(t, failingStore{})
	user := testutil.TestUser(t, db, testutil.WithSubscription(model.SubscriptionPro))

	profile, err := service.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, model.SubscriptionPro, profile.Subscription)
	assert.Equal(t, user.AvatarURL, profile.Avatar)
	require.NotNil(t, profile.Verified)
	assert.True(t, *profile.Verified)
}

func TestUserService_GetProfile_Vanished(t *testing.T) {
	service, _ := setupUserService(t, failingStore{})

	_, err := service.GetProfile(context.Background(), 424242)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateAvatar_Local(t *testing.T) {
	publicDir := t.TempDir()
	service, db := setupUserService(t, avatar.NewLocalStore(publicDir, "avatars"))
	ctx := context.Background()

	// 已有一个本地头像，更新后应被删除
	oldDir := filepath.Join(publicDir, "avatars")
	require.NoError(t, os.MkdirAll(oldDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "1-old.png"), []byte("old"), 0o644))
	user := testutil.TestUser(t, db, testutil.WithAvatar("avatars/1-old.png", ""))

	tmp := writeTestImage(t, 600, 300)
	resp, err := service.UpdateAvatar(ctx, user, avatar.Upload{Path: tmp, Filename: "me.png"})
	require.NoError(t, err)
	assert.Regexp(t, `^avatars/\d+-me\.png$`, resp.AvatarURL)

	f, err := os.Open(filepath.Join(publicDir, filepath.FromSlash(resp.AvatarURL)))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 250, cfg.Height)

	_, err = os.Stat(filepath.Join(oldDir, "1-old.png"))
	assert.True(t, os.IsNotExist(err))

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, resp.AvatarURL, stored.AvatarURL)
	assert.Nil(t, stored.AvatarRemoteID)
}

func TestUserService_UpdateAvatar_KeepsGravatarUntouched(t *testing.T) {
	publicDir := t.TempDir()
	service, db := setupUserService(t, avatar.NewLocalStore(publicDir, "avatars"))
	user := testutil.TestUser(t, db)

	resp, err := service.UpdateAvatar(context.Background(), user, avatar.Upload{
		Path:     writeTestImage(t, 100, 100),
		Filename: "a.png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, user.AvatarURL, resp.AvatarURL)
}

func TestUserService_UpdateAvatar_StoreFailureLeavesRecord(t *testing.T) {
	service, db := setupUserService(t, failingStore{})
	user := testutil.TestUser(t, db, testutil.WithAvatar("avatars/keep.png", ""))

	tmp := writeTestImage(t, 50, 50)
	_, err := service.UpdateAvatar(context.Background(), user, avatar.Upload{Path: tmp, Filename: "a.png"})
	assert.ErrorContains(t, err, "bucket unavailable")

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "avatars/keep.png", stored.AvatarURL)

	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}

func TestUserService_UpdateAvatar_NotAnImage(t *testing.T) {
	service, db := setupUserService(t, avatar.NewLocalStore(t.TempDir(), "avatars"))
	user := testutil.TestUser(t, db)

	tmp := filepath.Join(t.TempDir(), "upload-tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("plain text"), 0o644))

	_, err := service.UpdateAvatar(context.Background(), user, avatar.Upload{Path: tmp, Filename: "a.txt"})
	assert.ErrorIs(t, err, avatar.ErrUnsupportedImage)

	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}

func TestUserService_UpdateSubscription(t *testing.T) {
	service, db := setupUserService(t, failingStore{})
	user := testutil.TestUser(t, db)
	ctx := context.Background()

	info, err := service.UpdateSubscription(ctx, user, model.SubscriptionBusiness)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionBusiness, info.Subscription)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, model.SubscriptionBusiness, stored.Subscription)

	_, err = service.UpdateSubscription(ctx, user, "gold")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
