package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"fmt"
)

// NotificationService: чтение уведомлений и отметка о прочтении.
type NotificationService struct {
	repo repo.NotificationRepository
}

func NewNotificationService(r repo.NotificationRepository) *NotificationService {
	return &NotificationService{repo: r}
}

func (s *NotificationService) List(ctx context.Context, userID string, admin bool) ([]model.Notification, error) {
	return s.repo.ListFor(ctx, userID, admin)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string, admin bool) error {
	ok, err := s.repo.MarkRead(ctx, id, userID, admin)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}
	return nil
}
