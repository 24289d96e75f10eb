package repo

import (
	"DataSentinel/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// HoneytokenRepository: хранилище записей-ловушек.
type HoneytokenRepository interface {
	Create(ctx context.Context, h *model.Honeytoken) error
	GetByID(ctx context.Context, recordID string) (*model.Honeytoken, error)
	// Trigger переводит active→triggered. Возвращает false, если запись уже сработала
	// (или не найдена): из двух одновременных вызовов успешен ровно один.
	Trigger(ctx context.Context, recordID, by string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Honeytoken, error)
}

type honeytokenRepo struct {
	db *gorm.DB
}

func NewHoneytokenRepository(db *gorm.DB) HoneytokenRepository {
	return &honeytokenRepo{db: db}
}

func (r *honeytokenRepo) Create(ctx context.Context, h *model.Honeytoken) error {
	return conn(ctx, r.db).Create(h).Error
}

func (r *honeytokenRepo) GetByID(ctx context.Context, recordID string) (*model.Honeytoken, error) {
	var h model.Honeytoken
	if err := conn(ctx, r.db).Where("record_id = ?", recordID).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *honeytokenRepo) Trigger(ctx context.Context, recordID, by string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&model.Honeytoken{}).
		Where("record_id = ? AND status = ?", recordID, model.HoneytokenActive).
		Updates(map[string]any{
			"status":       model.HoneytokenTriggered,
			"triggered_at": at,
			"triggered_by": by,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *honeytokenRepo) ListByUser(ctx context.Context, userID string) ([]model.Honeytoken, error) {
	var list []model.Honeytoken
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}
