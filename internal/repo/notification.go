package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
)

// NotificationRepository: уведомления пользователей и администраторов.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListFor возвращает личные уведомления, а администратору также общие админские.
	ListFor(ctx context.Context, userID string, admin bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string, admin bool) (bool, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return conn(ctx, r.db).Create(n).Error
}

func (r *notificationRepo) visibleTo(q *gorm.DB, userID string, admin bool) *gorm.DB {
	if admin {
		return q.Where("user_id = ? OR audience = ?", userID, model.AudienceAdmins)
	}
	return q.Where("user_id = ?", userID)
}

func (r *notificationRepo) ListFor(ctx context.Context, userID string, admin bool) ([]model.Notification, error) {
	var list []model.Notification
	q := r.visibleTo(conn(ctx, r.db).Model(&model.Notification{}), userID, admin)
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID string, admin bool) (bool, error) {
	q := r.visibleTo(conn(ctx, r.db).Model(&model.Notification{}).Where("id = ?", id), userID, admin)
	res := q.Update("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
