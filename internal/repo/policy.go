package repo

import (
	"DataSentinel/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// PolicyRepository: политики использования данных.
type PolicyRepository interface {
	Create(ctx context.Context, p *model.Policy) error
	GetByID(ctx context.Context, id string) (*model.Policy, error)
	ListByUser(ctx context.Context, userID string) ([]model.Policy, error)
	// Deactivate: необратимый переход active→inactive.
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
}

type policyRepo struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) Create(ctx context.Context, p *model.Policy) error {
	return conn(ctx, r.db).Create(p).Error
}

func (r *policyRepo) GetByID(ctx context.Context, id string) (*model.Policy, error) {
	var p model.Policy
	if err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *policyRepo) ListByUser(ctx context.Context, userID string) ([]model.Policy, error) {
	var list []model.Policy
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *policyRepo) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&model.Policy{}).
		Where("id = ? AND status = ?", id, model.PolicyActive).
		Updates(map[string]any{"status": model.PolicyInactive, "deactivated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
