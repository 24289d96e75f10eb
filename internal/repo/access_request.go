package repo

import (
	"DataSentinel/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// AccessRequestRepository: запросы доступа к файлам.
type AccessRequestRepository interface {
	Create(ctx context.Context, r *model.AccessRequest) error
	GetByID(ctx context.Context, id string) (*model.AccessRequest, error)
	// FindPending возвращает nil, nil если ожидающего запроса нет.
	FindPending(ctx context.Context, fileID, requesterID string) (*model.AccessRequest, error)
	// Decide переводит pending→status. false: запрос уже рассмотрен.
	Decide(ctx context.Context, id, status, by string, at time.Time) (bool, error)
	// ListForUser: запросы, созданные пользователем или адресованные ему.
	ListForUser(ctx context.Context, userID string) ([]model.AccessRequest, error)
	ListPendingByRequester(ctx context.Context, requesterID string) ([]model.AccessRequest, error)
}

type accessRequestRepo struct {
	db *gorm.DB
}

func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepo{db: db}
}

func (r *accessRequestRepo) Create(ctx context.Context, req *model.AccessRequest) error {
	return conn(ctx, r.db).Create(req).Error
}

func (r *accessRequestRepo) GetByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	if err := conn(ctx, r.db).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) FindPending(ctx context.Context, fileID, requesterID string) (*model.AccessRequest, error) {
	var reqs []model.AccessRequest
	err := conn(ctx, r.db).
		Where("file_id = ? AND requester_id = ? AND status = ?", fileID, requesterID, model.RequestPending).
		Order("created_at").Limit(1).Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func (r *accessRequestRepo) Decide(ctx context.Context, id, status, by string, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&model.AccessRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]any{"status": status, "decided_at": at, "decided_by": by})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *accessRequestRepo) ListForUser(ctx context.Context, userID string) ([]model.AccessRequest, error) {
	var list []model.AccessRequest
	err := conn(ctx, r.db).
		Where("owner_id = ? OR requester_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *accessRequestRepo) ListPendingByRequester(ctx context.Context, requesterID string) ([]model.AccessRequest, error) {
	var list []model.AccessRequest
	err := conn(ctx, r.db).
		Where("requester_id = ? AND status = ?", requesterID, model.RequestPending).
		Find(&list).Error
	return list, err
}
