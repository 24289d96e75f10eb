package model

import "time"

// Статусы honeytoken.
const (
	HoneytokenActive    = "active"
	HoneytokenTriggered = "triggered"
)

// Honeytoken: фиктивная запись-ловушка. Её предъявление посторонним само по себе
// доказывает утечку.
type Honeytoken struct {
	RecordID string  `gorm:"primaryKey;type:varchar(36)" json:"record_id"`
	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"not null" json:"email"`
	UserID   string  `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	FileID   *string `gorm:"type:varchar(36);index" json:"file_id,omitempty"`
	// PartnerID: кому выдана запись, если выдана.
	PartnerID *string `gorm:"type:varchar(64);index" json:"partner_id,omitempty"`

	Status      string     `gorm:"not null;default:active;index" json:"status"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	TriggeredBy *string    `json:"triggered_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsActive сообщает, можно ли ещё сработать ловушке.
func (h *Honeytoken) IsActive() bool { return h != nil && h.Status == HoneytokenActive }
