package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Действия владельца над запросом доступа.
const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
)

// RequestAccessInput: параметры запроса доступа к файлу.
type RequestAccessInput struct {
	FileID      string
	RequesterID string
	Message     string
	Honeytoken  string
	RemoteAddr  string
}

// AccessResult: ответ на запрос доступа. RequestID заполнен, когда запрос ждёт решения владельца.
type AccessResult struct {
	Granted   bool   `json:"access"`
	RequestID string `json:"requestId,omitempty"`
}

// AccessService принимает решения по доступу к файлам.
type AccessService struct {
	st       *repo.Stores
	locks    *KeyLock
	risk     *RiskService
	audit    *AuditService
	notifier Notifier
	logger   *zap.SugaredLogger
}

func NewAccessService(st *repo.Stores, locks *KeyLock, risk *RiskService, audit *AuditService, notifier Notifier, logger *zap.SugaredLogger) *AccessService {
	return &AccessService{st: st, locks: locks, risk: risk, audit: audit, notifier: notifier, logger: logger}
}

// RequestAccess обрабатывает запрос доступа. Несовпавший honeytoken не считается ошибкой:
// вызывающий получает обычный отказ, а срабатывание ловушки фиксируется.
func (s *AccessService) RequestAccess(ctx context.Context, in RequestAccessInput) (AccessResult, error) {
	if in.FileID == "" || in.RequesterID == "" {
		return AccessResult{}, invalid("file and requester are required")
	}

	unlockFile := s.locks.Lock(fileKey(in.FileID))
	defer unlockFile()
	unlockPartner := s.locks.Lock(partnerKey(in.RequesterID))
	defer unlockPartner()

	var (
		out    outbox
		res    AccessResult
		replay bool
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		f, err := s.st.Files.GetByID(ctx, in.FileID)
		if err != nil {
			return notFound(err, "file", in.FileID)
		}
		if f.OwnerID == in.RequesterID {
			return invalidState("access already granted")
		}
		// Предъявленный honeytoken проверяется раньше остальных условий, иначе
		// ожидающий запрос позволил бы подбирать токен без срабатывания ловушки.
		if in.Honeytoken != "" {
			res, replay, err = s.presentHoneytoken(ctx, &out, f, in)
			return err
		}

		if f.HasAccess(in.RequesterID) {
			return invalidState("access already granted")
		}
		pending, err := s.st.Requests.FindPending(ctx, f.ID, in.RequesterID)
		if err != nil {
			return err
		}
		if pending != nil {
			return invalidState("request already pending")
		}

		partner, err := s.risk.ensurePartner(ctx, in.RequesterID)
		if err != nil {
			return err
		}
		if partner.Blocks(f.OwnerID) {
			res = AccessResult{Granted: false}
			return s.audit.Record(ctx, s.entry(f, in, model.ActionRestricted, model.OutcomeDenied, "partner status "+partner.Status))
		}

		req := &model.AccessRequest{
			ID:          uuid.NewString(),
			FileID:      f.ID,
			FileName:    f.Name,
			OwnerID:     f.OwnerID,
			RequesterID: in.RequesterID,
			Message:     in.Message,
			Status:      model.RequestPending,
			CreatedAt:   timeNow(),
		}
		if err := s.st.Requests.Create(ctx, req); err != nil {
			return fmt.Errorf("create access request: %w", err)
		}
		if err := s.audit.Record(ctx, s.entry(f, in, model.ActionRequestCreated, model.OutcomePending, "request "+req.ID)); err != nil {
			return err
		}
		out.toUser(f.OwnerID, model.NotifyInfo, model.SeverityLow,
			fmt.Sprintf("%s requested access to %s", partner.Name, f.Name))
		res = AccessResult{Granted: false, RequestID: req.ID}
		return nil
	})
	if err != nil {
		return AccessResult{}, err
	}
	out.flush(s.notifier)

	if replay {
		return AccessResult{}, invalidState("honeytoken already spent")
	}
	return res, nil
}

// presentHoneytoken разбирает предъявленный honeytoken. Повтор уже сработавшей ловушки
// фиксируется в журнале, а ошибка возвращается после фиксации транзакции.
func (s *AccessService) presentHoneytoken(ctx context.Context, out *outbox, f *model.File, in RequestAccessInput) (AccessResult, bool, error) {
	fileID := f.ID
	match := f.HoneytokenID != nil &&
		subtle.ConstantTimeCompare([]byte(*f.HoneytokenID), []byte(in.Honeytoken)) == 1

	if !match {
		if _, err := s.risk.recordTrapHit(ctx, out, in.RequesterID, f.OwnerID, &fileID, model.SeverityHigh); err != nil {
			return AccessResult{}, false, err
		}
		if err := s.audit.Record(ctx, s.entry(f, in, model.ActionHoneytokenMismatch, model.OutcomeTrap, "")); err != nil {
			return AccessResult{}, false, err
		}
		out.toUser(f.OwnerID, model.NotifyThreat, model.SeverityHigh,
			fmt.Sprintf("Invalid honeytoken presented for %s by %s", f.Name, in.RequesterID))
		return AccessResult{Granted: false}, false, nil
	}

	triggered, err := s.st.Honeytokens.Trigger(ctx, *f.HoneytokenID, in.RequesterID, timeNow())
	if err != nil {
		return AccessResult{}, false, fmt.Errorf("trigger honeytoken: %w", err)
	}
	if !triggered {
		if err := s.audit.Record(ctx, s.entry(f, in, model.ActionHoneytokenReplay, model.OutcomeDenied, "honeytoken already spent")); err != nil {
			return AccessResult{}, false, err
		}
		return AccessResult{}, true, nil
	}

	if err := s.st.Files.AddShare(ctx, f.ID, in.RequesterID); err != nil {
		return AccessResult{}, false, fmt.Errorf("share file: %w", err)
	}
	if _, err := s.risk.recordTrapHit(ctx, out, in.RequesterID, f.OwnerID, &fileID, model.SeverityHigh); err != nil {
		return AccessResult{}, false, err
	}
	if err := s.audit.Record(ctx, s.entry(f, in, model.ActionHoneytokenGrant, model.OutcomeTrap, "honeytoken "+*f.HoneytokenID)); err != nil {
		return AccessResult{}, false, err
	}
	out.toUser(f.OwnerID, model.NotifyThreat, model.SeverityHigh,
		fmt.Sprintf("Honeytoken for %s was used by %s", f.Name, in.RequesterID))
	out.toAdmins(model.NotifySystem, model.SeverityHigh,
		fmt.Sprintf("Honeytoken triggered on file %s by partner %s", f.ID, in.RequesterID))

	s.logger.Warnw("honeytoken triggered", "file_id", f.ID, "partner_id", in.RequesterID)
	return AccessResult{Granted: true}, false, nil
}

func (s *AccessService) entry(f *model.File, in RequestAccessInput, action, outcome, detail string) *model.AccessLog {
	return &model.AccessLog{
		ActorID:    in.RequesterID,
		FileID:     f.ID,
		OwnerID:    f.OwnerID,
		PartnerID:  in.RequesterID,
		Action:     action,
		Outcome:    outcome,
		Detail:     detail,
		RemoteAddr: in.RemoteAddr,
	}
}

// ApproveAccess выносит решение владельца. Решение принимается ровно один раз.
func (s *AccessService) ApproveAccess(ctx context.Context, requestID, action, actorID string) (*model.AccessRequest, error) {
	unlock := s.locks.Lock(requestKey(requestID))
	defer unlock()

	var (
		out outbox
		req *model.AccessRequest
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		r, err := s.st.Requests.GetByID(ctx, requestID)
		if err != nil {
			return notFound(err, "access request", requestID)
		}
		var status, logAction, outcome string
		switch action {
		case ActionApprove:
			status, logAction, outcome = model.RequestApproved, model.ActionRequestApproved, model.OutcomeGranted
		case ActionDeny:
			status, logAction, outcome = model.RequestDenied, model.ActionRequestDenied, model.OutcomeDenied
		default:
			return fmt.Errorf("%q: %w", action, ErrInvalidAction)
		}
		if !r.IsPending() {
			return invalidState("request is " + r.Status)
		}

		ok, err := s.st.Requests.Decide(ctx, r.ID, status, actorID, timeNow())
		if err != nil {
			return err
		}
		if !ok {
			return invalidState("request already decided")
		}

		if status == model.RequestApproved {
			if err := s.st.Files.AddShare(ctx, r.FileID, r.RequesterID); err != nil {
				return fmt.Errorf("share file: %w", err)
			}
			out.toUser(r.RequesterID, model.NotifySuccess, model.SeverityLow,
				fmt.Sprintf("Access to %s approved", r.FileName))
		} else {
			out.toUser(r.RequesterID, model.NotifyWarning, model.SeverityLow,
				fmt.Sprintf("Access to %s denied", r.FileName))
		}

		if err := s.audit.Record(ctx, &model.AccessLog{
			ActorID:   actorID,
			FileID:    r.FileID,
			OwnerID:   r.OwnerID,
			PartnerID: r.RequesterID,
			Action:    logAction,
			Outcome:   outcome,
			Detail:    "request " + r.ID,
		}); err != nil {
			return err
		}

		req, err = s.st.Requests.GetByID(ctx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.flush(s.notifier)
	return req, nil
}

// GetRequest возвращает запрос; OwnerID нужен для проверки прав на границе.
func (s *AccessService) GetRequest(ctx context.Context, id string) (*model.AccessRequest, error) {
	r, err := s.st.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "access request", id)
	}
	return r, nil
}

// ListForUser: запросы, созданные пользователем или адресованные ему, новые сначала.
func (s *AccessService) ListForUser(ctx context.Context, userID string) ([]model.AccessRequest, error) {
	return s.st.Requests.ListForUser(ctx, userID)
}

// AccessFile открывает файл владельцу или пользователю из списка доступа. Попытка
// постороннего фиксируется, владелец получает предупреждение.
func (s *AccessService) AccessFile(ctx context.Context, fileID, userID, remoteAddr string) (*model.File, error) {
	f, err := s.st.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, notFound(err, "file", fileID)
	}
	if err := authorizeFile(ctx, s.audit, s.notifier, f, userID, model.ActionFileAccess, remoteAddr); err != nil {
		return nil, err
	}
	return f, nil
}

// authorizeFile пишет в журнал решение о прямом доступе к файлу.
func authorizeFile(ctx context.Context, audit *AuditService, notifier Notifier, f *model.File, userID, action, remoteAddr string) error {
	entry := &model.AccessLog{
		ActorID:    userID,
		FileID:     f.ID,
		OwnerID:    f.OwnerID,
		Action:     action,
		RemoteAddr: remoteAddr,
	}
	if userID != f.OwnerID {
		entry.PartnerID = userID
	}

	if f.HasAccess(userID) {
		entry.Outcome = model.OutcomeGranted
		return audit.Record(ctx, entry)
	}

	entry.Outcome = model.OutcomeDenied
	entry.Detail = "not in access list"
	if err := audit.Record(ctx, entry); err != nil {
		return err
	}
	var out outbox
	out.toUser(f.OwnerID, model.NotifyThreat, model.SeverityMedium,
		fmt.Sprintf("Unauthorized access attempt to %s by %s", f.Name, userID))
	out.flush(notifier)
	return fmt.Errorf("file %s: %w", f.ID, ErrForbidden)
}
