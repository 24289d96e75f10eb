package model

import "time"

// Виды уведомлений.
const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyThreat  = "threat"
	NotifySystem  = "system"
)

// AudienceAdmins: уведомление адресовано всем администраторам.
const AudienceAdmins = "admins"

// Notification: уведомление пользователю. Флаг прочтения хранится на сервере.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"index" json:"user_id,omitempty"`
	Audience  string    `gorm:"index" json:"audience,omitempty"`
	Kind      string    `gorm:"not null" json:"kind"`
	Severity  string    `gorm:"not null;default:low" json:"severity"`
	Message   string    `gorm:"not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
