package model

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User: учётная запись пользователя или партнёра.
type User struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Login    string `gorm:"uniqueIndex;not null" json:"login"`
	Password string `gorm:"not null" json:"-"` // bcrypt-хеш
	Name     string `json:"name"`
	Role     string `gorm:"not null;default:user" json:"role"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
