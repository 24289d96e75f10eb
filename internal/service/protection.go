package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WatermarkView: водяной знак с вычисленным статусом.
type WatermarkView struct {
	model.Watermark
	Status string `json:"status"`
}

// PolicyInput: параметры новой политики.
type PolicyInput struct {
	UserID         string
	Purpose        string
	RetentionDays  int
	GeoRestriction string
}

// DataRequestInput: запрос партнёра на обработку данных пользователей.
type DataRequestInput struct {
	PartnerID  string
	Purpose    string
	Region     string
	UserIDs    []string
	RemoteAddr string
}

// DataDecision: решение по одному пользователю.
type DataDecision struct {
	UserID  string `json:"user_id"`
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

// ProtectionService выпускает honeytoken, водяные знаки и политики и применяет политики
// к запросам партнёров. Согласие проверяется в момент каждого решения.
type ProtectionService struct {
	st           *repo.Stores
	locks        *KeyLock
	consents     *ConsentService
	risk         *RiskService
	audit        *AuditService
	watermarkTTL time.Duration
	logger       *zap.SugaredLogger
}

func NewProtectionService(st *repo.Stores, locks *KeyLock, consents *ConsentService, risk *RiskService, audit *AuditService, watermarkTTL time.Duration, logger *zap.SugaredLogger) *ProtectionService {
	return &ProtectionService{
		st:           st,
		locks:        locks,
		consents:     consents,
		risk:         risk,
		audit:        audit,
		watermarkTTL: watermarkTTL,
		logger:       logger,
	}
}

// requireUser проверяет, что пользователь, к данным которого относится защита, существует.
func (s *ProtectionService) requireUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user is required")
	}
	if _, err := s.st.Users.GetByID(ctx, userID); err != nil {
		return notFound(err, "user", userID)
	}
	return nil
}

// GenerateHoneytoken выпускает запись-ловушку для пользователя, при необходимости
// помеченную партнёром, которому она передаётся.
func (s *ProtectionService) GenerateHoneytoken(ctx context.Context, userID, partnerID string) (*model.Honeytoken, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.consents.Check(ctx, userID, model.ProtectionHoneytoken); err != nil {
		return nil, err
	}
	var issuedTo *string
	if partnerID = strings.TrimSpace(partnerID); partnerID != "" {
		issuedTo = &partnerID
	}
	h := newDecoy(userID, nil, issuedTo)
	if err := s.st.Honeytokens.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create honeytoken: %w", err)
	}
	s.logger.Infow("honeytoken generated", "record_id", h.RecordID, "user_id", userID, "partner_id", partnerID)
	return h, nil
}

// WatermarkToken: детерминированный токен для кортежа (partnerID, timestamp, userID).
func WatermarkToken(partnerID, userID, timestamp string) string {
	sum := sha256.Sum256([]byte(partnerID + "|" + timestamp + "|" + userID))
	return hex.EncodeToString(sum[:])
}

// GenerateWatermark выпускает водяной знак. Повтор с тем же кортежем возвращает сохранённую
// запись; совпадение токена при другом кортеже: ErrIntegrity, запись не перезаписывается.
func (s *ProtectionService) GenerateWatermark(ctx context.Context, partnerID, userID, timestamp string) (*WatermarkView, error) {
	if partnerID == "" || timestamp == "" {
		return nil, invalid("partner and timestamp are required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.consents.Check(ctx, userID, model.ProtectionWatermark); err != nil {
		return nil, err
	}

	w := &model.Watermark{
		Token:     WatermarkToken(partnerID, userID, timestamp),
		PartnerID: partnerID,
		UserID:    userID,
		Timestamp: timestamp,
		CreatedAt: timeNow(),
	}
	created, err := s.st.Watermarks.CreateIfAbsent(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("create watermark: %w", err)
	}
	if !created {
		stored, err := s.st.Watermarks.GetByToken(ctx, w.Token)
		if err != nil {
			return nil, err
		}
		if stored.PartnerID != partnerID || stored.UserID != userID || stored.Timestamp != timestamp {
			s.logger.Errorw("watermark collision", "token", w.Token)
			return nil, fmt.Errorf("%w: watermark token collision", ErrIntegrity)
		}
		w = stored
	}
	return s.view(w), nil
}

func (s *ProtectionService) view(w *model.Watermark) *WatermarkView {
	return &WatermarkView{Watermark: *w, Status: w.StatusAt(timeNow(), s.watermarkTTL)}
}

// LookupWatermark находит передачу по утёкшему токену.
func (s *ProtectionService) LookupWatermark(ctx context.Context, token string) (*WatermarkView, error) {
	w, err := s.st.Watermarks.GetByToken(ctx, strings.ToLower(strings.TrimSpace(token)))
	if err != nil {
		return nil, notFound(err, "watermark", token)
	}
	return s.view(w), nil
}

// GeneratePolicy создаёт политику использования данных.
func (s *ProtectionService) GeneratePolicy(ctx context.Context, in PolicyInput) (*model.Policy, error) {
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := s.consents.Check(ctx, in.UserID, model.ProtectionPolicy); err != nil {
		return nil, err
	}
	if !model.ValidPurpose(in.Purpose) {
		return nil, invalid("unknown purpose " + in.Purpose)
	}
	if !model.ValidGeo(in.GeoRestriction) {
		return nil, invalid("unknown geo restriction " + in.GeoRestriction)
	}
	if in.RetentionDays <= 0 {
		return nil, invalid("retention days must be positive")
	}

	now := timeNow()
	p := &model.Policy{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		Purpose:        in.Purpose,
		RetentionDays:  in.RetentionDays,
		GeoRestriction: in.GeoRestriction,
		ExpiryDate:     now.AddDate(0, 0, in.RetentionDays),
		Status:         model.PolicyActive,
		CreatedAt:      now,
	}
	if err := s.st.Policies.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	return p, nil
}

// DeactivatePolicy отключает политику владельца. Повторное отключение: ErrInvalidState.
func (s *ProtectionService) DeactivatePolicy(ctx context.Context, policyID, userID string) (*model.Policy, error) {
	p, err := s.st.Policies.GetByID(ctx, policyID)
	if err != nil {
		return nil, notFound(err, "policy", policyID)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("policy %s: %w", policyID, ErrForbidden)
	}
	ok, err := s.st.Policies.Deactivate(ctx, policyID, timeNow())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidState("policy already inactive")
	}
	return s.st.Policies.GetByID(ctx, policyID)
}

func (s *ProtectionService) ListPolicies(ctx context.Context, userID string) ([]model.Policy, error) {
	return s.st.Policies.ListByUser(ctx, userID)
}

// PartnerDataRequest применяет политики пользователей к запросу партнёра. Каждое решение
// попадает в журнал; объём запросов учитывается в риске партнёра.
func (s *ProtectionService) PartnerDataRequest(ctx context.Context, in DataRequestInput) ([]DataDecision, error) {
	if !model.ValidPurpose(in.Purpose) {
		return nil, invalid("unknown purpose " + in.Purpose)
	}
	if in.Region == "" || len(in.UserIDs) == 0 {
		return nil, invalid("region and users are required")
	}

	unlock := s.locks.Lock(partnerKey(in.PartnerID))
	defer unlock()

	var (
		out       outbox
		decisions []DataDecision
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		partner, err := s.risk.ensurePartner(ctx, in.PartnerID)
		if err != nil {
			return err
		}
		now := timeNow()
		for _, userID := range in.UserIDs {
			d, err := s.decide(ctx, partner, in, userID, now)
			if err != nil {
				return err
			}
			outcome := model.OutcomeDenied
			if d.Granted {
				outcome = model.OutcomeGranted
			}
			if err := s.audit.Record(ctx, &model.AccessLog{
				ActorID:    in.PartnerID,
				OwnerID:    userID,
				PartnerID:  in.PartnerID,
				Action:     model.ActionDataRequest,
				Outcome:    outcome,
				Detail:     fmt.Sprintf("%s/%s: %s", in.Purpose, in.Region, d.Reason),
				RemoteAddr: in.RemoteAddr,
			}); err != nil {
				return err
			}
			decisions = append(decisions, d)
		}
		_, err = s.risk.evaluate(ctx, &out, in.PartnerID, "", model.CauseAutomatic, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	out.flush(s.risk.notifier)
	return decisions, nil
}

func (s *ProtectionService) decide(ctx context.Context, partner *model.Partner, in DataRequestInput, userID string, now time.Time) (DataDecision, error) {
	d := DataDecision{UserID: userID}
	if _, err := s.st.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.Reason = "unknown user"
			return d, nil
		}
		return d, err
	}
	if partner.Blocks(userID) {
		d.Reason = "partner restricted"
		return d, nil
	}
	if err := s.consents.Check(ctx, userID, model.ProtectionPolicy); err != nil {
		switch {
		case errors.Is(err, ErrConsentExpired):
			d.Reason = "consent expired"
		case errors.Is(err, ErrConsentDenied):
			d.Reason = "consent not granted"
		default:
			return d, err
		}
		return d, nil
	}
	policies, err := s.st.Policies.ListByUser(ctx, userID)
	if err != nil {
		return d, err
	}
	for i := range policies {
		if policies[i].Covers(in.Purpose, in.Region, now) {
			d.Granted = true
			d.Reason = "policy " + policies[i].ID
			return d, nil
		}
	}
	d.Reason = "no matching policy"
	return d, nil
}
