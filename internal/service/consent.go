package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ConsentView: согласие вместе с вычисленным признаком истечения.
type ConsentView struct {
	model.Consent
	Expired bool `json:"expired"`
}

// ConsentUpdate: изменяемые поля. nil означает «не менять».
type ConsentUpdate struct {
	WatermarkEnabled  *bool      `json:"watermark_enabled"`
	PolicyEnabled     *bool      `json:"policy_enabled"`
	HoneytokenEnabled *bool      `json:"honeytoken_enabled"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	ClearExpiry       bool       `json:"clear_expiry"`
}

type ConsentService struct {
	consents repo.ConsentRepository
}

func NewConsentService(consents repo.ConsentRepository) *ConsentService {
	return &ConsentService{consents: consents}
}

func defaultConsent(userID string) *model.Consent {
	return &model.Consent{
		UserID:            userID,
		WatermarkEnabled:  true,
		PolicyEnabled:     true,
		HoneytokenEnabled: true,
	}
}

func (s *ConsentService) load(ctx context.Context, userID string) (*model.Consent, error) {
	c, err := s.consents.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultConsent(userID), nil
	}
	return c, err
}

// Get возвращает согласие пользователя; при отсутствии записи значения по умолчанию.
func (s *ConsentService) Get(ctx context.Context, userID string) (*ConsentView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ConsentView{Consent: *c, Expired: c.Expired(timeNow())}, nil
}

// Update меняет согласие владельца.
func (s *ConsentService) Update(ctx context.Context, userID string, u ConsentUpdate) (*ConsentView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.WatermarkEnabled != nil {
		c.WatermarkEnabled = *u.WatermarkEnabled
	}
	if u.PolicyEnabled != nil {
		c.PolicyEnabled = *u.PolicyEnabled
	}
	if u.HoneytokenEnabled != nil {
		c.HoneytokenEnabled = *u.HoneytokenEnabled
	}
	switch {
	case u.ClearExpiry:
		c.ExpiryDate = nil
	case u.ExpiryDate != nil:
		exp := u.ExpiryDate.UTC()
		c.ExpiryDate = &exp
	}
	if err := s.consents.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consent: %w", err)
	}
	return &ConsentView{Consent: *c, Expired: c.Expired(timeNow())}, nil
}

// Check проверяет согласие на вид защиты в момент решения.
func (s *ConsentService) Check(ctx context.Context, userID string, kind model.ProtectionKind) error {
	c, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	now := timeNow()
	if c.Expired(now) {
		return fmt.Errorf("%s protection for user %s: %w", kind, userID, ErrConsentExpired)
	}
	if !c.Allows(kind, now) {
		return fmt.Errorf("%s protection for user %s: %w", kind, userID, ErrConsentDenied)
	}
	return nil
}
