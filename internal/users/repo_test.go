package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gmihail/shop/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: " Bob@Example.COM", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "bob@example.com", created.Email)

	byEmail, err := repo.FindByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)
	assert.Nil(t, byID.LastLoginAt)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "carol@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLoginAt)
	assert.True(t, loaded.LastLoginAt.Equal(at))
}

func TestFromModelOmitsCredentials(t *testing.T) {
	assert.Nil(t, FromModel(nil))
	dto := FromModel(&models.User{ID: uuid.New(), Email: "d@example.com", PasswordHash: "secret"})
	assert.Equal(t, "d@example.com", dto.Email)
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	assert.Same(t, repo, repo.WithTx(nil))

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.WithTx(tx).Create(ctx, CreateUserDTO{Email: "tx@example.com", PasswordHash: "hash"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = repo.FindByEmail(ctx, "tx@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
