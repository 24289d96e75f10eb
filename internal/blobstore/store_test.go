package blobstore

import (
	"DataSentinel/internal/repo"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBStore_PutGet(t *testing.T) {
	db, err := repo.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	s := NewDBStore(repo.NewBlobRepository(db))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("hello"), "text/plain"))
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "k1"))
	_, err = s.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, "k1"))
}

func TestMapMinioErr(t *testing.T) {
	err := mapMinioErr("k", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	err = mapMinioErr("k", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "get object k")
}

func TestNewMinioStore_BadEndpoint(t *testing.T) {
	_, err := NewMinioStore(context.Background(), MinioConfig{Endpoint: "", Bucket: "files"})
	assert.Error(t, err)
}
