package model

import "time"

// ProtectionKind: вид защиты, который пользователь может разрешить.
type ProtectionKind string

const (
	ProtectionWatermark  ProtectionKind = "watermark"
	ProtectionPolicy     ProtectionKind = "policy"
	ProtectionHoneytoken ProtectionKind = "honeytoken"
)

// Consent: согласие пользователя на механизмы защиты его данных.
type Consent struct {
	UserID            string     `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	WatermarkEnabled  bool       `gorm:"not null" json:"watermark_enabled"`
	PolicyEnabled     bool       `gorm:"not null" json:"policy_enabled"`
	HoneytokenEnabled bool       `gorm:"not null" json:"honeytoken_enabled"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Expired истинно, если срок согласия истёк к моменту now.
func (c *Consent) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && !now.Before(*c.ExpiryDate)
}

// Enabled возвращает сохранённое значение флага без учёта срока.
func (c *Consent) Enabled(kind ProtectionKind) bool {
	switch kind {
	case ProtectionWatermark:
		return c.WatermarkEnabled
	case ProtectionPolicy:
		return c.PolicyEnabled
	case ProtectionHoneytoken:
		return c.HoneytokenEnabled
	}
	return false
}

// Allows: эффективное значение флага на момент now.
// После истечения срока все флаги считаются выключенными.
func (c *Consent) Allows(kind ProtectionKind, now time.Time) bool {
	if c == nil || c.Expired(now) {
		return false
	}
	return c.Enabled(kind)
}
