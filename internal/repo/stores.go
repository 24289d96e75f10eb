package repo

import "gorm.io/gorm"

// Stores собирает репозитории поверх одного подключения.
type Stores struct {
	Tx            Transactor
	Users         UserRepository
	Consents      ConsentRepository
	Files         FileRepository
	Blobs         BlobRepository
	Honeytokens   HoneytokenRepository
	Watermarks    WatermarkRepository
	Policies      PolicyRepository
	Requests      AccessRequestRepository
	Partners      PartnerRepository
	TrapLogs      TrapLogRepository
	AccessLogs    AccessLogRepository
	Notifications NotificationRepository
	Escalations   EscalationRepository
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Tx:            NewTransactor(db),
		Users:         NewUserRepository(db),
		Consents:      NewConsentRepository(db),
		Files:         NewFileRepository(db),
		Blobs:         NewBlobRepository(db),
		Honeytokens:   NewHoneytokenRepository(db),
		Watermarks:    NewWatermarkRepository(db),
		Policies:      NewPolicyRepository(db),
		Requests:      NewAccessRequestRepository(db),
		Partners:      NewPartnerRepository(db),
		TrapLogs:      NewTrapLogRepository(db),
		AccessLogs:    NewAccessLogRepository(db),
		Notifications: NewNotificationRepository(db),
		Escalations:   NewEscalationRepository(db),
	}
}
