package model

import "time"

// Уровни серьёзности.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ValidSeverity проверяет значение уровня.
func ValidSeverity(s string) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// TrapLog: срабатывание ловушки. Только добавление; меняется только флаг эскалации.
type TrapLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PartnerID string    `gorm:"not null;index;type:varchar(64)" json:"partner_id"`
	UserID    string    `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	FileID    *string   `gorm:"type:varchar(36)" json:"file_id,omitempty"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Severity  string    `gorm:"not null" json:"severity"`
	Escalated bool      `gorm:"not null;default:false" json:"escalated"`
}
