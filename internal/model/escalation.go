package model

import "time"

const (
	EscalationOpen     = "open"
	EscalationResolved = "resolved"
)

// Escalation: обращение пользователя к администратору по поводу партнёра.
type Escalation struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	PartnerID  string     `gorm:"index" json:"partner_id"`
	Reason     string     `json:"reason"`
	Status     string     `gorm:"not null;default:open;index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
}
