package repo

import (
	"DataSentinel/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	// успешное создание
	u, err := r.CreateUser(ctx, &model.User{ID: "u-1", Login: "john", Password: "hash", Role: model.RoleUser})
	assert.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	// поиск по логину: найдено
	got, err := r.GetUserByLogin(ctx, "john")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byID, err := r.GetByID(ctx, "u-1")
	assert.NoError(t, err)
	assert.Equal(t, "john", byID.Login)

	// уникальный логин: вторая вставка должна дать ошибку
	_, err = r.CreateUser(ctx, &model.User{ID: "u-2", Login: "john", Password: "x"})
	assert.Error(t, err)

	// поиск несуществующего: ожидаем gorm.ErrRecordNotFound
	got, err = r.GetUserByLogin(ctx, "doesnotexist")
	assert.Nil(t, got)
	assert.Error(t, err)
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	users, err := r.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}
