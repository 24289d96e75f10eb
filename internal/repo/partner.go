package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerRepository: партнёры, их счётчики и история статусов.
type PartnerRepository interface {
	// Ensure создаёт партнёра при первой активности и возвращает актуальную запись.
	Ensure(ctx context.Context, id, name string) (*model.Partner, error)
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	List(ctx context.Context) ([]model.Partner, error)
	IncrementTrapHits(ctx context.Context, id string) error
	UpdateRisk(ctx context.Context, id string, score float64, status string) error
	SetManualBlock(ctx context.Context, id string, blocked bool) error
	AddBlockedUser(ctx context.Context, partnerID, userID string) error
	AddStatusChange(ctx context.Context, c *model.PartnerStatusChange) error
	ListStatusChanges(ctx context.Context, partnerID string) ([]model.PartnerStatusChange, error)
}

type partnerRepo struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepo{db: db}
}

func (r *partnerRepo) Ensure(ctx context.Context, id, name string) (*model.Partner, error) {
	p := &model.Partner{ID: id, Name: name, Status: model.PartnerActive}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Omit("BlockedUsers").Create(p).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *partnerRepo) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	var p model.Partner
	if err := conn(ctx, r.db).Preload("BlockedUsers").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepo) List(ctx context.Context) ([]model.Partner, error) {
	var list []model.Partner
	err := conn(ctx, r.db).Preload("BlockedUsers").Order("risk_score DESC, id").Find(&list).Error
	return list, err
}

func (r *partnerRepo) IncrementTrapHits(ctx context.Context, id string) error {
	return conn(ctx, r.db).Model(&model.Partner{}).
		Where("id = ?", id).
		UpdateColumn("trap_hits", gorm.Expr("trap_hits + ?", 1)).Error
}

func (r *partnerRepo) UpdateRisk(ctx context.Context, id string, score float64, status string) error {
	return conn(ctx, r.db).Model(&model.Partner{}).
		Where("id = ?", id).
		Updates(map[string]any{"risk_score": score, "status": status}).Error
}

func (r *partnerRepo) SetManualBlock(ctx context.Context, id string, blocked bool) error {
	return conn(ctx, r.db).Model(&model.Partner{}).
		Where("id = ?", id).
		Update("manual_block", blocked).Error
}

func (r *partnerRepo) AddBlockedUser(ctx context.Context, partnerID, userID string) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PartnerBlockedUser{PartnerID: partnerID, UserID: userID}).Error
}

func (r *partnerRepo) AddStatusChange(ctx context.Context, c *model.PartnerStatusChange) error {
	return conn(ctx, r.db).Create(c).Error
}

func (r *partnerRepo) ListStatusChanges(ctx context.Context, partnerID string) ([]model.PartnerStatusChange, error) {
	var list []model.PartnerStatusChange
	err := conn(ctx, r.db).Where("partner_id = ?", partnerID).Order("changed_at").Find(&list).Error
	return list, err
}
