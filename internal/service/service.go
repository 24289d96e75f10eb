package service

import (
	"DataSentinel/internal/blobstore"
	"DataSentinel/internal/repo"
	"DataSentinel/internal/risk"
	"time"

	"go.uber.org/zap"
)

// Options: зависимости сервисов помимо хранилищ.
type Options struct {
	Blobs          blobstore.Store
	Notifier       Notifier
	Policy         *risk.Holder
	MaxUploadBytes int64
	WatermarkTTL   time.Duration
	Logger         *zap.SugaredLogger
}

// Services: все сервисы ядра с общими блокировками.
type Services struct {
	Users         *UserService
	Consents      *ConsentService
	Files         *FileService
	Access        *AccessService
	Risk          *RiskService
	Protection    *ProtectionService
	Audit         *AuditService
	Escalations   *EscalationService
	Notifications *NotificationService
	Dashboard     *DashboardService
}

func New(st *repo.Stores, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Policy == nil {
		opts.Policy = risk.NewHolder(nil)
	}
	if opts.Blobs == nil {
		opts.Blobs = blobstore.NewDBStore(st.Blobs)
	}

	locks := NewKeyLock()
	audit := NewAuditService(st.AccessLogs)
	consents := NewConsentService(st.Consents)
	riskSvc := NewRiskService(st, locks, opts.Policy, opts.Notifier, opts.Logger)

	return &Services{
		Users:         NewUserService(st.Users, st.Consents),
		Consents:      consents,
		Files:         NewFileService(st, opts.Blobs, consents, audit, opts.Notifier, opts.MaxUploadBytes, opts.Logger),
		Access:        NewAccessService(st, locks, riskSvc, audit, opts.Notifier, opts.Logger),
		Risk:          riskSvc,
		Protection:    NewProtectionService(st, locks, consents, riskSvc, audit, opts.WatermarkTTL, opts.Logger),
		Audit:         audit,
		Escalations:   NewEscalationService(st, opts.Notifier),
		Notifications: NewNotificationService(st.Notifications),
		Dashboard:     NewDashboardService(st, consents, opts.Policy),
	}
}
