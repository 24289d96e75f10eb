package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository: метаданные файлов и списки доступа.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	// GetByID возвращает файл вместе со списком доступа.
	GetByID(ctx context.Context, id string) (*model.File, error)
	ListOwned(ctx context.Context, ownerID string) ([]model.File, error)
	// ListAccessible: собственные файлы и файлы, к которым выдан доступ.
	ListAccessible(ctx context.Context, userID string) ([]model.File, error)
	// ListNotOwnedBy: файлы остальных владельцев.
	ListNotOwnedBy(ctx context.Context, userID string) ([]model.File, error)
	// AddShare идемпотентно добавляет пользователя в список доступа.
	AddShare(ctx context.Context, fileID, userID string) error
	CountOwned(ctx context.Context, ownerID string) (int64, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return conn(ctx, r.db).Omit("SharedWith").Create(f).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := conn(ctx, r.db).Preload("SharedWith").Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) ListOwned(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File
	err := conn(ctx, r.db).Preload("SharedWith").
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) ListAccessible(ctx context.Context, userID string) ([]model.File, error) {
	db := conn(ctx, r.db)
	shared := db.Session(&gorm.Session{NewDB: true}).Model(&model.FileShare{}).Select("file_id").Where("user_id = ?", userID)
	var files []model.File
	err := db.Preload("SharedWith").
		Where("owner_id = ? OR id IN (?)", userID, shared).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) ListNotOwnedBy(ctx context.Context, userID string) ([]model.File, error) {
	var files []model.File
	err := conn(ctx, r.db).Preload("SharedWith").
		Where("owner_id <> ?", userID).
		Order("owner_id, uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) AddShare(ctx context.Context, fileID, userID string) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.FileShare{FileID: fileID, UserID: userID}).Error
}

func (r *fileRepo) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&model.File{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}
