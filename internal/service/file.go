package service

import (
	"DataSentinel/internal/blobstore"
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadInput: загружаемый файл.
type UploadInput struct {
	OwnerID     string
	Name        string
	Description string
	ContentType string
	Content     []byte
}

// FileView: файл в списке пользователя. Владелец видит список доступа и свой honeytoken.
type FileView struct {
	model.File
	Owned        bool     `json:"owned"`
	Shares       []string `json:"shared_with,omitempty"`
	HoneytokenID string   `json:"honeytoken_id,omitempty"`
}

// PartnerFileView: чужой файл с состоянием доступа для смотрящего.
type PartnerFileView struct {
	model.File
	HasAccess      bool `json:"has_access"`
	PendingRequest bool `json:"pending_request"`
}

// FileService: загрузка и выдача файлов.
type FileService struct {
	st       *repo.Stores
	blobs    blobstore.Store
	consents *ConsentService
	audit    *AuditService
	notifier Notifier
	maxSize  int64
	logger   *zap.SugaredLogger
}

func NewFileService(st *repo.Stores, blobs blobstore.Store, consents *ConsentService, audit *AuditService, notifier Notifier, maxSize int64, logger *zap.SugaredLogger) *FileService {
	return &FileService{st: st, blobs: blobs, consents: consents, audit: audit, notifier: notifier, maxSize: maxSize, logger: logger}
}

// Upload сохраняет файл. При действующем согласии к файлу привязывается новый honeytoken.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*FileView, error) {
	name := strings.TrimSpace(filepath.Base(in.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, invalid("file name is required")
	}
	if len(in.Content) == 0 {
		return nil, invalid("file is empty")
	}
	if s.maxSize > 0 && int64(len(in.Content)) > s.maxSize {
		return nil, invalid(fmt.Sprintf("file exceeds %d bytes", s.maxSize))
	}

	id := uuid.NewString()
	if err := s.blobs.Put(ctx, id, in.Content, in.ContentType); err != nil {
		return nil, err
	}

	f := &model.File{
		ID:          id,
		OwnerID:     in.OwnerID,
		Name:        name,
		Type:        strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
		Size:        int64(len(in.Content)),
		Description: in.Description,
		BlobKey:     id,
	}

	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		err := s.consents.Check(ctx, in.OwnerID, model.ProtectionHoneytoken)
		switch {
		case err == nil:
			h := newDecoy(in.OwnerID, &id, nil)
			if err := s.st.Honeytokens.Create(ctx, h); err != nil {
				return fmt.Errorf("create honeytoken: %w", err)
			}
			f.HoneytokenID = &h.RecordID
		case errors.Is(err, ErrConsentDenied), errors.Is(err, ErrConsentExpired):
		default:
			return err
		}
		return s.st.Files.Create(ctx, f)
	})
	if err != nil {
		// файл не сохранён, его содержимое удаляется
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), id); derr != nil {
			s.logger.Warnw("orphan blob left after failed upload", "blob_key", id, "error", derr)
		}
		return nil, err
	}

	var out outbox
	out.toUser(in.OwnerID, model.NotifySuccess, model.SeverityLow, fmt.Sprintf("File %s uploaded", f.Name))
	out.flush(s.notifier)
	s.logger.Infow("file uploaded", "file_id", f.ID, "owner_id", f.OwnerID, "size", f.Size, "honeytoken", f.HoneytokenID != nil)
	return ownerView(f, in.OwnerID), nil
}

func ownerView(f *model.File, viewer string) *FileView {
	v := &FileView{File: *f, Owned: f.OwnerID == viewer}
	if v.Owned {
		v.Shares = f.SharedUserIDs()
		if f.HoneytokenID != nil {
			v.HoneytokenID = *f.HoneytokenID
		}
	}
	return v
}

// List: собственные файлы и файлы, к которым у пользователя есть доступ.
func (s *FileService) List(ctx context.Context, userID string) ([]FileView, error) {
	files, err := s.st.Files.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]FileView, 0, len(files))
	for i := range files {
		views = append(views, *ownerView(&files[i], userID))
	}
	return views, nil
}

// PartnerView: файлы других владельцев с признаками доступа и ожидающего запроса.
func (s *FileService) PartnerView(ctx context.Context, userID string) ([]PartnerFileView, error) {
	files, err := s.st.Files.ListNotOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.st.Requests.ListPendingByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	waiting := make(map[string]bool, len(pending))
	for _, r := range pending {
		waiting[r.FileID] = true
	}

	views := make([]PartnerFileView, 0, len(files))
	for i := range files {
		views = append(views, PartnerFileView{
			File:           files[i],
			HasAccess:      files[i].HasAccess(userID),
			PendingRequest: waiting[files[i].ID],
		})
	}
	return views, nil
}

// Download отдаёт содержимое файла владельцу или пользователю из списка доступа.
func (s *FileService) Download(ctx context.Context, fileID, userID, remoteAddr string) (*model.File, []byte, error) {
	f, err := s.st.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, notFound(err, "file", fileID)
	}
	if err := authorizeFile(ctx, s.audit, s.notifier, f, userID, model.ActionFileDownload, remoteAddr); err != nil {
		return nil, nil, err
	}
	content, err := s.blobs.Get(ctx, f.BlobKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, nil, fmt.Errorf("content of file %s: %w", f.ID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return f, content, nil
}
