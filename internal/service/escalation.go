package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EscalationService: обращения пользователей к администраторам.
type EscalationService struct {
	st       *repo.Stores
	notifier Notifier
}

func NewEscalationService(st *repo.Stores, notifier Notifier) *EscalationService {
	return &EscalationService{st: st, notifier: notifier}
}

// RequestAdminAction ставит обращение в очередь администраторов.
func (s *EscalationService) RequestAdminAction(ctx context.Context, userID, partnerID, reason string) (*model.Escalation, error) {
	reason = strings.TrimSpace(reason)
	if partnerID == "" || reason == "" {
		return nil, invalid("partner and reason are required")
	}
	if _, err := s.st.Partners.GetByID(ctx, partnerID); err != nil {
		return nil, notFound(err, "partner", partnerID)
	}

	e := &model.Escalation{
		ID:        uuid.NewString(),
		UserID:    userID,
		PartnerID: partnerID,
		Reason:    reason,
		Status:    model.EscalationOpen,
		CreatedAt: timeNow(),
	}
	if err := s.st.Escalations.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create escalation: %w", err)
	}

	var out outbox
	out.toAdmins(model.NotifyWarning, model.SeverityMedium,
		fmt.Sprintf("User %s requested action against partner %s: %s", userID, partnerID, reason))
	out.flush(s.notifier)
	return e, nil
}

func (s *EscalationService) List(ctx context.Context, status string) ([]model.Escalation, error) {
	if status != "" && status != model.EscalationOpen && status != model.EscalationResolved {
		return nil, invalid("unknown status " + status)
	}
	return s.st.Escalations.List(ctx, status)
}

// Resolve закрывает обращение один раз.
func (s *EscalationService) Resolve(ctx context.Context, id, adminID string) (*model.Escalation, error) {
	e, err := s.st.Escalations.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "escalation", id)
	}
	ok, err := s.st.Escalations.Resolve(ctx, id, adminID, timeNow())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidState("escalation already resolved")
	}

	var out outbox
	out.toUser(e.UserID, model.NotifySuccess, model.SeverityLow,
		fmt.Sprintf("Your report about partner %s was resolved", e.PartnerID))
	out.flush(s.notifier)
	return s.st.Escalations.GetByID(ctx, id)
}
