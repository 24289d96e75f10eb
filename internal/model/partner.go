package model

import "time"

// Статусы партнёра.
const (
	PartnerActive     = "active"
	PartnerMonitored  = "monitored"
	PartnerRestricted = "restricted"
)

// Причины смены статуса партнёра.
const (
	CauseAutomatic     = "automatic"
	CauseManualBlock   = "manual_block"
	CauseManualUnblock = "manual_unblock"
)

// Partner: сторона, запрашивающая данные. RiskScore вычисляется движком риска
// и напрямую не задаётся.
type Partner struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string  `json:"name"`
	RiskScore   float64 `gorm:"not null;default:0" json:"risk_score"`
	TrapHits    int     `gorm:"not null;default:0" json:"trap_hits"`
	Status      string  `gorm:"not null;default:active" json:"status"`
	ManualBlock bool    `gorm:"not null;default:false" json:"manual_block"`

	BlockedUsers []PartnerBlockedUser `gorm:"foreignKey:PartnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// Traits вычисляются при пересчёте риска и не хранятся.
	Traits []string `gorm:"-" json:"traits,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PartnerBlockedUser: пользователь, к данным которого партнёру закрыт доступ.
type PartnerBlockedUser struct {
	PartnerID string    `gorm:"primaryKey;type:varchar(64)" json:"partner_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BlockedUserIDs возвращает идентификаторы заблокированных пользователей.
func (p *Partner) BlockedUserIDs() []string {
	ids := make([]string, 0, len(p.BlockedUsers))
	for _, b := range p.BlockedUsers {
		ids = append(ids, b.UserID)
	}
	return ids
}

// Blocks истинно, если партнёру закрыт доступ к данным userID.
func (p *Partner) Blocks(userID string) bool {
	if p == nil {
		return false
	}
	if p.Status == PartnerRestricted {
		return true
	}
	for _, b := range p.BlockedUsers {
		if b.UserID == userID {
			return true
		}
	}
	return false
}

// PartnerStatusChange: история статусов; позволяет отличить ручную блокировку от автоматической.
type PartnerStatusChange struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PartnerID string    `gorm:"not null;index;type:varchar(64)" json:"partner_id"`
	From      string    `gorm:"column:from_status;not null" json:"from"`
	To        string    `gorm:"column:to_status;not null" json:"to"`
	Cause     string    `gorm:"not null" json:"cause"`
	ActorID   string    `json:"actor_id,omitempty"`
	At        time.Time `gorm:"column:changed_at;not null" json:"at"`
}
