package repo

import (
	"DataSentinel/internal/model"
	"context"

	"gorm.io/gorm"
)

// ConsentRepository: хранилище согласий, по одному на пользователя.
type ConsentRepository interface {
	Get(ctx context.Context, userID string) (*model.Consent, error)
	// Save вставляет или полностью перезаписывает запись.
	Save(ctx context.Context, c *model.Consent) error
}

type consentRepo struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &consentRepo{db: db}
}

func (r *consentRepo) Get(ctx context.Context, userID string) (*model.Consent, error) {
	var c model.Consent
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consentRepo) Save(ctx context.Context, c *model.Consent) error {
	return conn(ctx, r.db).Save(c).Error
}
