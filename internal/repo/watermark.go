package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatermarkRepository: неизменяемые водяные знаки.
type WatermarkRepository interface {
	// CreateIfAbsent никогда не перезаписывает существующий токен.
	CreateIfAbsent(ctx context.Context, w *model.Watermark) (created bool, err error)
	GetByToken(ctx context.Context, token string) (*model.Watermark, error)
}

type watermarkRepo struct {
	db *gorm.DB
}

func NewWatermarkRepository(db *gorm.DB) WatermarkRepository {
	return &watermarkRepo{db: db}
}

func (r *watermarkRepo) CreateIfAbsent(ctx context.Context, w *model.Watermark) (bool, error) {
	tx := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(w)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *watermarkRepo) GetByToken(ctx context.Context, token string) (*model.Watermark, error) {
	var w model.Watermark
	if err := conn(ctx, r.db).Where("token = ?", token).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}
