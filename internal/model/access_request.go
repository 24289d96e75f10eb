package model

import "time"

// Статусы запроса доступа.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDenied   = "denied"
)

// AccessRequest: запрос доступа к файлу, решение по которому принимает владелец.
type AccessRequest struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FileID      string `gorm:"not null;index;type:varchar(36)" json:"file_id"`
	FileName    string `json:"file_name"`
	OwnerID     string `gorm:"not null;index;type:varchar(36)" json:"owner_id"`
	RequesterID string `gorm:"not null;index" json:"requester_id"`
	Message     string `json:"message,omitempty"`
	Status      string `gorm:"not null;default:pending;index" json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *string    `json:"decided_by,omitempty"`
}

// IsPending: запрос ещё не рассмотрен.
func (r *AccessRequest) IsPending() bool { return r.Status == RequestPending }
