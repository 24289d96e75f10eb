package repo

import (
	"DataSentinel/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// EscalationRepository: очередь обращений к администратору.
type EscalationRepository interface {
	Create(ctx context.Context, e *model.Escalation) error
	GetByID(ctx context.Context, id string) (*model.Escalation, error)
	// List возвращает все обращения, либо только с указанным статусом.
	List(ctx context.Context, status string) ([]model.Escalation, error)
	Resolve(ctx context.Context, id, by string, at time.Time) (bool, error)
}

type escalationRepo struct {
	db *gorm.DB
}

func NewEscalationRepository(db *gorm.DB) EscalationRepository {
	return &escalationRepo{db: db}
}

func (r *escalationRepo) Create(ctx context.Context, e *model.Escalation) error {
	return conn(ctx, r.db).Create(e).Error
}

func (r *escalationRepo) GetByID(ctx context.Context, id string) (*model.Escalation, error) {
	var e model.Escalation
	if err := conn(ctx, r.db).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *escalationRepo) List(ctx context.Context, status string) ([]model.Escalation, error) {
	q := conn(ctx, r.db).Model(&model.Escalation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.Escalation
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *escalationRepo) Resolve(ctx context.Context, id, by string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&model.Escalation{}).
		Where("id = ? AND status = ?", id, model.EscalationOpen).
		Updates(map[string]any{"status": model.EscalationResolved, "resolved_at": at, "resolved_by": by})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
