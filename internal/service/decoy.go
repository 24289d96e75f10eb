package service

import (
	"DataSentinel/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// newDecoy создаёт запись-ловушку с правдоподобными именем и адресом.
func newDecoy(userID string, fileID, partnerID *string) *model.Honeytoken {
	return &model.Honeytoken{
		RecordID:  uuid.NewString(),
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		UserID:    userID,
		FileID:    fileID,
		PartnerID: partnerID,
		Status:    model.HoneytokenActive,
		CreatedAt: timeNow(),
	}
}
