package repo

import (
	"DataSentinel/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// AccessLogFilter: фильтр журнала доступа. UserID совпадает и с исполнителем, и с владельцем.
type AccessLogFilter struct {
	UserID    string
	PartnerID string
	FileID    string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// AccessLogRepository: журнал аудита. Изменение и удаление записей не предусмотрены.
type AccessLogRepository interface {
	Create(ctx context.Context, e *model.AccessLog) error
	Query(ctx context.Context, f AccessLogFilter) ([]model.AccessLog, error)
	// CountActivity считает не отклонённые записи исполнителя с указанными действиями начиная с since.
	CountActivity(ctx context.Context, actorID string, actions []string, since time.Time) (int64, error)
}

type accessLogRepo struct {
	db *gorm.DB
}

func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepo{db: db}
}

func (r *accessLogRepo) Create(ctx context.Context, e *model.AccessLog) error {
	return conn(ctx, r.db).Create(e).Error
}

func (r *accessLogRepo) Query(ctx context.Context, f AccessLogFilter) ([]model.AccessLog, error) {
	q := conn(ctx, r.db).Model(&model.AccessLog{})
	if f.UserID != "" {
		q = q.Where("actor_id = ? OR owner_id = ?", f.UserID, f.UserID)
	}
	if f.PartnerID != "" {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	if f.FileID != "" {
		q = q.Where("file_id = ?", f.FileID)
	}
	if f.From != nil {
		q = q.Where("timestamp >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("timestamp <= ?", f.To.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.AccessLog
	err := q.Order("timestamp DESC, id").Find(&list).Error
	return list, err
}

func (r *accessLogRepo) CountActivity(ctx context.Context, actorID string, actions []string, since time.Time) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&model.AccessLog{}).
		Where("actor_id = ? AND action IN ? AND outcome <> ? AND timestamp >= ?",
			actorID, actions, model.OutcomeDenied, since.UTC()).
		Count(&n).Error
	return n, err
}
