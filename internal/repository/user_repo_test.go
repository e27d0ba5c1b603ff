package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{
		Email:        "create@example.com",
		PasswordHash: "hash",
		Subscription: model.SubscriptionStarter,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "dup@example.com", PasswordHash: "h"}))

	// 唯一索引兜底
	err := repo.Create(ctx, &model.User{Email: "dup@example.com", PasswordHash: "h"})
	assert.Error(t, err)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db)

	found, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Email, found.Email)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "unique@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	found, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, email, found.Email)

	_, err = repo.GetByEmail(context.Background(), "Unique@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	email := "exists@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	exists, err := repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByEmail(ctx, "notexists@example.com")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_UpdateToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.TestUser(t, db)

	token := "session-token"
	require.NoError(t, repo.UpdateToken(ctx, user.ID, &token))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Token)
	assert.Equal(t, token, *updated.Token)

	// 登出清空
	require.NoError(t, repo.UpdateToken(ctx, user.ID, nil))

	updated, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Token)
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.TestUser(t, db)

	remoteID := "Avatars/user-1"
	require.NoError(t, repo.UpdateAvatar(ctx, user.ID, "https://cdn.example.com/Avatars/user-1", &remoteID))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/Avatars/user-1", updated.AvatarURL)
	require.NotNil(t, updated.AvatarRemoteID)
	assert.Equal(t, remoteID, *updated.AvatarRemoteID)

	require.NoError(t, repo.UpdateAvatar(ctx, user.ID, "avatars/1-me.png", nil))

	updated, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/1-me.png", updated.AvatarURL)
	assert.Nil(t, updated.AvatarRemoteID)
}

func TestUserRepository_VerifyFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.TestUser(t, db, testutil.Unverified("verify-token-1"))

	found, err := repo.GetByVerifyToken(ctx, "verify-token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.MarkVerified(ctx, user.ID))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Verified)
	assert.Nil(t, updated.VerifyToken)

	_, err = repo.GetByVerifyToken(ctx, "verify-token-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 已验证的记录不会再次被修改
	assert.ErrorIs(t, repo.MarkVerified(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	require.NoError(t, repo.UpdateSubscription(ctx, user.ID, model.SubscriptionPro))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPro, updated.Subscription)
}

func TestUserRepository_ListLocalAvatars(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	testutil.TestUser(t, db, testutil.WithAvatar("avatars/1-a.png", ""))
	testutil.TestUser(t, db, testutil.WithAvatar("avatars/2-b.jpg", ""))
	testutil.TestUser(t, db, testutil.WithAvatar("https://cdn.example.com/Avatars/user-3", "Avatars/user-3"))

	avatars, err := repo.ListLocalAvatars(context.Background(), "avatars/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"avatars/1-a.png", "avatars/2-b.jpg"}, avatars)
}
