package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobRepository минимальный контракт хранения содержимого файлов в БД.
type BlobRepository interface {
	// CreateIfAbsent пытается создать запись. Если существует, ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, id string, content []byte) (created bool, err error)
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepository создаёт реализацию репозитория для Blob.
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepo{db: db}
}

// CreateIfAbsent создает Blob в БД, если его ещё нет.
func (r *blobRepo) CreateIfAbsent(ctx context.Context, id string, content []byte) (bool, error) {
	b := &model.Blob{ID: id, Content: content}
	tx := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(b)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *blobRepo) Get(ctx context.Context, id string) ([]byte, error) {
	var b model.Blob
	if err := conn(ctx, r.db).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return b.Content, nil
}

func (r *blobRepo) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&model.Blob{}).Error
}
