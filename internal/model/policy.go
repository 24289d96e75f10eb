package model

import "time"

const (
	PolicyActive   = "active"
	PolicyInactive = "inactive"
)

// Допустимые цели обработки данных.
var PolicyPurposes = []string{
	"Marketing Analysis",
	"Service Improvement",
	"Research",
	"Analytics",
	"Customer Support",
}

// GeoGlobal разрешает любой регион.
const GeoGlobal = "GLOBAL"

// Допустимые географические ограничения.
var GeoRestrictions = []string{"US", "EU", "CA", "IN", GeoGlobal}

// Policy: правило использования данных пользователя.
type Policy struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string     `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	Purpose        string     `gorm:"not null" json:"purpose"`
	RetentionDays  int        `gorm:"not null" json:"retention_days"`
	GeoRestriction string     `gorm:"not null" json:"geo_restriction"`
	ExpiryDate     time.Time  `gorm:"not null" json:"expiry_date"`
	Status         string     `gorm:"not null;default:active" json:"status"`
	DeactivatedAt  *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Covers проверяет, разрешает ли политика обработку с целью purpose в регионе region на момент now.
func (p *Policy) Covers(purpose, region string, now time.Time) bool {
	if p.Status != PolicyActive || !now.Before(p.ExpiryDate) {
		return false
	}
	if p.Purpose != purpose {
		return false
	}
	return p.GeoRestriction == GeoGlobal || p.GeoRestriction == region
}

// ValidPurpose / ValidGeo: проверки перечислений.
func ValidPurpose(p string) bool { return contains(PolicyPurposes, p) }
func ValidGeo(g string) bool     { return contains(GeoRestrictions, g) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
