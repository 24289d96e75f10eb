package model

// Blob: содержимое файла, когда внешнее объектное хранилище не настроено.
type Blob struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	Content []byte `gorm:"not null"`
}
