package model

import "time"

// Действия журнала доступа.
const (
	ActionRequestCreated     = "request_created"
	ActionRequestApproved    = "request_approved"
	ActionRequestDenied      = "request_denied"
	ActionHoneytokenGrant    = "honeytoken_grant"
	ActionHoneytokenReplay   = "honeytoken_replay"
	ActionHoneytokenMismatch = "honeytoken_mismatch"
	ActionRestricted         = "restricted"
	ActionFileAccess         = "file_access"
	ActionFileDownload       = "file_download"
	ActionDataRequest        = "data_request"
)

// Исходы решений.
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomePending = "pending"
	OutcomeTrap    = "trap"
)

// AccessLog: неизменяемая запись аудита о решении по доступу.
type AccessLog struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ActorID    string    `gorm:"not null;index" json:"actor_id"`
	FileID     string    `gorm:"index" json:"file_id,omitempty"`
	OwnerID    string    `gorm:"index" json:"owner_id,omitempty"`
	PartnerID  string    `gorm:"index" json:"partner_id,omitempty"`
	Action     string    `gorm:"not null" json:"action"`
	Outcome    string    `gorm:"not null" json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	Digest     string    `gorm:"not null;type:varchar(64)" json:"digest"`
}
