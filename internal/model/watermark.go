package model

import "time"

// Статусы водяного знака (вычисляемые).
const (
	WatermarkActive  = "active"
	WatermarkExpired = "expired"
)

// Watermark: отслеживаемый токен, привязанный к передаче данных партнёру.
type Watermark struct {
	Token     string    `gorm:"primaryKey;type:varchar(64)" json:"token"`
	PartnerID string    `gorm:"not null;index" json:"partner_id"`
	UserID    string    `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	Timestamp string    `gorm:"not null" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// StatusAt вычисляет статус по времени жизни ttl.
func (w *Watermark) StatusAt(now time.Time, ttl time.Duration) string {
	if ttl > 0 && !now.Before(w.CreatedAt.Add(ttl)) {
		return WatermarkExpired
	}
	return WatermarkActive
}
