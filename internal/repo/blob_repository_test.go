package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBlobRepository_CreateIfAbsent_Idempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewBlobRepository(db)
	ctx := context.Background()

	// первая вставка: created=true
	created, err := r.CreateIfAbsent(ctx, "b1", []byte{1, 2})
	assert.NoError(t, err)
	assert.True(t, created)

	// повторная: created=false, содержимое не перезаписывается
	created, err = r.CreateIfAbsent(ctx, "b1", []byte{9})
	assert.NoError(t, err)
	assert.False(t, created)

	got, err := r.Get(ctx, "b1")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
