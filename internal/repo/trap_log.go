package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
)

// TrapFilter: условия выборки срабатываний ловушек. Пустые поля не фильтруют.
type TrapFilter struct {
	UserID    string
	PartnerID string
	Limit     int
}

// TrapLogRepository: журнал срабатываний ловушек (только добавление).
type TrapLogRepository interface {
	Create(ctx context.Context, t *model.TrapLog) error
	GetByID(ctx context.Context, id string) (*model.TrapLog, error)
	List(ctx context.Context, f TrapFilter) ([]model.TrapLog, error)
	Count(ctx context.Context, f TrapFilter) (int64, error)
	// Escalate выставляет флаг эскалации один раз.
	Escalate(ctx context.Context, id string) (bool, error)
}

type trapLogRepo struct {
	db *gorm.DB
}

func NewTrapLogRepository(db *gorm.DB) TrapLogRepository {
	return &trapLogRepo{db: db}
}

func (r *trapLogRepo) Create(ctx context.Context, t *model.TrapLog) error {
	return conn(ctx, r.db).Create(t).Error
}

func (r *trapLogRepo) GetByID(ctx context.Context, id string) (*model.TrapLog, error) {
	var t model.TrapLog
	if err := conn(ctx, r.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trapLogRepo) scoped(ctx context.Context, f TrapFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&model.TrapLog{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.PartnerID != "" {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	return q
}

func (r *trapLogRepo) List(ctx context.Context, f TrapFilter) ([]model.TrapLog, error) {
	q := r.scoped(ctx, f).Order("timestamp DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.TrapLog
	err := q.Find(&list).Error
	return list, err
}

func (r *trapLogRepo) Count(ctx context.Context, f TrapFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, f).Count(&n).Error
	return n, err
}

func (r *trapLogRepo) Escalate(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Model(&model.TrapLog{}).
		Where("id = ? AND escalated = ?", id, false).
		Update("escalated", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
