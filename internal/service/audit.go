package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditService ведёт журнал доступа. Каждая запись несёт дайджест своих полей.
type AuditService struct {
	logs repo.AccessLogRepository
}

func NewAuditService(logs repo.AccessLogRepository) *AuditService {
	return &AuditService{logs: logs}
}

// Digest: sha256 по каноническому представлению записи.
func Digest(e *model.AccessLog) string {
	canonical := strings.Join([]string{
		e.ID,
		e.ActorID,
		e.FileID,
		e.OwnerID,
		e.PartnerID,
		e.Action,
		e.Outcome,
		e.Detail,
		e.RemoteAddr,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	}, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Record сохраняет запись в транзакции из ctx, если она есть. Ошибка записи
// возвращается как ErrIntegrity: решение без записи в журнале не считается принятым.
func (s *AuditService) Record(ctx context.Context, e *model.AccessLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = timeNow()
	}
	e.Digest = Digest(e)
	if err := s.logs.Create(ctx, e); err != nil {
		return fmt.Errorf("%w: audit write %s/%s: %v", ErrIntegrity, e.Action, e.Outcome, err)
	}
	return nil
}

func (s *AuditService) Query(ctx context.Context, f repo.AccessLogFilter) ([]model.AccessLog, error) {
	return s.logs.Query(ctx, f)
}

// Verify пересчитывает дайджесты и возвращает идентификаторы изменённых записей.
func (s *AuditService) Verify(ctx context.Context) ([]string, error) {
	entries, err := s.logs.Query(ctx, repo.AccessLogFilter{})
	if err != nil {
		return nil, err
	}
	tampered := []string{}
	for i := range entries {
		if Digest(&entries[i]) != entries[i].Digest {
			tampered = append(tampered, entries[i].ID)
		}
	}
	return tampered, nil
}
