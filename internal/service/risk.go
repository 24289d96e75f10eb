package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"DataSentinel/internal/risk"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// volumeActions: действия партнёра, которые учитываются как объём запросов.
var volumeActions = []string{
	model.ActionRequestCreated,
	model.ActionHoneytokenGrant,
	model.ActionFileAccess,
	model.ActionDataRequest,
}

// RiskService ведёт счётчики ловушек, балл риска и статус партнёров.
// Изменения по одному партнёру выполняются последовательно.
type RiskService struct {
	st       *repo.Stores
	locks    *KeyLock
	policy   *risk.Holder
	notifier Notifier
	logger   *zap.SugaredLogger
}

func NewRiskService(st *repo.Stores, locks *KeyLock, policy *risk.Holder, notifier Notifier, logger *zap.SugaredLogger) *RiskService {
	return &RiskService{st: st, locks: locks, policy: policy, notifier: notifier, logger: logger}
}

// RecordTrapHit фиксирует срабатывание ловушки партнёром partnerID против пользователя userID.
func (s *RiskService) RecordTrapHit(ctx context.Context, partnerID, userID string, fileID *string, severity string) (*model.TrapLog, error) {
	if partnerID == "" || userID == "" {
		return nil, invalid("partner and user are required")
	}
	if !model.ValidSeverity(severity) {
		return nil, invalid("unknown severity " + severity)
	}

	unlock := s.locks.Lock(partnerKey(partnerID))
	defer unlock()

	var (
		out outbox
		tl  *model.TrapLog
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		tl, err = s.recordTrapHit(ctx, &out, partnerID, userID, fileID, severity)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.flush(s.notifier)
	return tl, nil
}

// recordTrapHit выполняется внутри транзакции при захваченной блокировке партнёра.
func (s *RiskService) recordTrapHit(ctx context.Context, out *outbox, partnerID, userID string, fileID *string, severity string) (*model.TrapLog, error) {
	if _, err := s.ensurePartner(ctx, partnerID); err != nil {
		return nil, err
	}

	tl := &model.TrapLog{
		ID:        uuid.NewString(),
		PartnerID: partnerID,
		UserID:    userID,
		FileID:    fileID,
		Timestamp: timeNow(),
		Severity:  severity,
	}
	if err := s.st.TrapLogs.Create(ctx, tl); err != nil {
		return nil, fmt.Errorf("create trap log: %w", err)
	}
	if err := s.st.Partners.IncrementTrapHits(ctx, partnerID); err != nil {
		return nil, fmt.Errorf("increment trap hits: %w", err)
	}
	if _, err := s.evaluate(ctx, out, partnerID, userID, model.CauseAutomatic, ""); err != nil {
		return nil, err
	}

	s.logger.Warnw("trap hit recorded", "partner_id", partnerID, "user_id", userID, "severity", severity)
	return tl, nil
}

// ensurePartner создаёт партнёра при первой активности. Имя берётся из логина пользователя.
func (s *RiskService) ensurePartner(ctx context.Context, partnerID string) (*model.Partner, error) {
	name := partnerID
	if u, err := s.st.Users.GetByID(ctx, partnerID); err == nil {
		name = u.Login
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p, err := s.st.Partners.Ensure(ctx, partnerID, name)
	if err != nil {
		return nil, fmt.Errorf("ensure partner: %w", err)
	}
	return p, nil
}

// evaluate пересчитывает балл и статус. Переход статуса пишется в историю; ручные
// действия пишутся всегда, чтобы их можно было отличить от автоматических.
func (s *RiskService) evaluate(ctx context.Context, out *outbox, partnerID, victimID, cause, actorID string) (*model.Partner, error) {
	p, err := s.st.Partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, notFound(err, "partner", partnerID)
	}

	pol := s.policy.Policy()
	volume, err := s.st.AccessLogs.CountActivity(ctx, partnerID, volumeActions, timeNow().Add(-pol.VolumeWindow))
	if err != nil {
		return nil, fmt.Errorf("count partner activity: %w", err)
	}
	score := risk.Score(pol, p.TrapHits, volume)
	status := risk.Evaluate(pol, score, p.TrapHits, p.ManualBlock)

	if err := s.st.Partners.UpdateRisk(ctx, partnerID, score, status); err != nil {
		return nil, fmt.Errorf("update partner risk: %w", err)
	}

	if status != p.Status || cause != model.CauseAutomatic {
		change := &model.PartnerStatusChange{
			ID:        uuid.NewString(),
			PartnerID: partnerID,
			From:      p.Status,
			To:        status,
			Cause:     cause,
			ActorID:   actorID,
			At:        timeNow(),
		}
		if err := s.st.Partners.AddStatusChange(ctx, change); err != nil {
			return nil, fmt.Errorf("record status change: %w", err)
		}
	}

	if status == model.PartnerRestricted && p.Status != model.PartnerRestricted && cause == model.CauseAutomatic {
		out.toAdmins(model.NotifySystem, model.SeverityHigh,
			fmt.Sprintf("Partner %s automatically restricted: risk score %.1f, %d trap hits", p.Name, score, p.TrapHits))
		s.logger.Warnw("partner restricted", "partner_id", partnerID, "risk_score", score, "trap_hits", p.TrapHits)
	}

	if status == model.PartnerRestricted && victimID != "" {
		if err := s.st.Partners.AddBlockedUser(ctx, partnerID, victimID); err != nil {
			return nil, fmt.Errorf("block user for partner: %w", err)
		}
	}

	burst, err := s.st.AccessLogs.CountActivity(ctx, partnerID, volumeActions, timeNow().Add(-pol.BurstWindow))
	if err != nil {
		return nil, fmt.Errorf("count partner burst: %w", err)
	}

	p, err = s.st.Partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	p.Traits = risk.Traits(pol, timeNow(), p.TrapHits, burst)
	return p, nil
}

// EvaluatePartnerStatus пересчитывает статус партнёра по текущему состоянию.
func (s *RiskService) EvaluatePartnerStatus(ctx context.Context, partnerID string) (*model.Partner, error) {
	unlock := s.locks.Lock(partnerKey(partnerID))
	defer unlock()

	var (
		out outbox
		p   *model.Partner
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.evaluate(ctx, &out, partnerID, "", model.CauseAutomatic, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	out.flush(s.notifier)
	return p, nil
}

// ManualBlock: ручная блокировка администратором, независимо от балла.
func (s *RiskService) ManualBlock(ctx context.Context, partnerID, adminID string) (*model.Partner, error) {
	return s.setManualBlock(ctx, partnerID, adminID, true)
}

// ManualUnblock снимает только ручную блокировку; автоматическое ограничение остаётся.
func (s *RiskService) ManualUnblock(ctx context.Context, partnerID, adminID string) (*model.Partner, error) {
	return s.setManualBlock(ctx, partnerID, adminID, false)
}

func (s *RiskService) setManualBlock(ctx context.Context, partnerID, adminID string, blocked bool) (*model.Partner, error) {
	unlock := s.locks.Lock(partnerKey(partnerID))
	defer unlock()

	cause := model.CauseManualUnblock
	if blocked {
		cause = model.CauseManualBlock
	}

	var (
		out outbox
		p   *model.Partner
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		cur, err := s.st.Partners.GetByID(ctx, partnerID)
		if err != nil {
			return notFound(err, "partner", partnerID)
		}
		if cur.ManualBlock == blocked {
			if blocked {
				return invalidState("partner already blocked manually")
			}
			return invalidState("partner is not blocked manually")
		}
		if err := s.st.Partners.SetManualBlock(ctx, partnerID, blocked); err != nil {
			return err
		}
		p, err = s.evaluate(ctx, &out, partnerID, "", cause, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.flush(s.notifier)

	s.logger.Infow("partner manual override", "partner_id", partnerID, "cause", cause, "admin_id", adminID, "status", p.Status)
	return p, nil
}

func (s *RiskService) ListPartners(ctx context.Context) ([]model.Partner, error) {
	return s.st.Partners.List(ctx)
}

func (s *RiskService) GetPartner(ctx context.Context, partnerID string) (*model.Partner, error) {
	p, err := s.st.Partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, notFound(err, "partner", partnerID)
	}
	return p, nil
}

// StatusHistory: история статусов партнёра в хронологическом порядке.
func (s *RiskService) StatusHistory(ctx context.Context, partnerID string) ([]model.PartnerStatusChange, error) {
	if _, err := s.GetPartner(ctx, partnerID); err != nil {
		return nil, err
	}
	return s.st.Partners.ListStatusChanges(ctx, partnerID)
}

// EscalateTrap помечает срабатывание как эскалированное. Повторная эскалация: ErrInvalidState.
func (s *RiskService) EscalateTrap(ctx context.Context, trapID string) (*model.TrapLog, error) {
	if _, err := s.st.TrapLogs.GetByID(ctx, trapID); err != nil {
		return nil, notFound(err, "trap log", trapID)
	}
	ok, err := s.st.TrapLogs.Escalate(ctx, trapID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidState("trap log already escalated")
	}
	return s.st.TrapLogs.GetByID(ctx, trapID)
}
