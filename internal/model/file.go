package model

import "time"

// File: файл пользователя, доступ к которому выдаётся по запросу.
type File struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"file_id"`
	OwnerID     string `gorm:"not null;index;type:varchar(36)" json:"owner_id"`
	Name        string `gorm:"not null" json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Description string `json:"description"`

	// HoneytokenID пуст, если на момент загрузки согласие на honeytoken отсутствовало.
	HoneytokenID *string `gorm:"type:varchar(36);index" json:"-"`
	// BlobKey: ключ содержимого в хранилище блобов.
	BlobKey string `json:"-"`

	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	SharedWith []FileShare `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// FileShare: пользователь, получивший доступ к файлу.
type FileShare struct {
	FileID    string    `gorm:"primaryKey;type:varchar(36)" json:"file_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SharedUserIDs возвращает список пользователей с доступом.
func (f *File) SharedUserIDs() []string {
	ids := make([]string, 0, len(f.SharedWith))
	for _, s := range f.SharedWith {
		ids = append(ids, s.UserID)
	}
	return ids
}

// HasAccess: владелец или пользователь из списка доступа.
func (f *File) HasAccess(userID string) bool {
	if f.OwnerID == userID {
		return true
	}
	for _, s := range f.SharedWith {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
