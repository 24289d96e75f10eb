package handlers

import (
	"DataSentinel/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// ConsentHandler: согласие текущего пользователя.
type ConsentHandler struct {
	Consents *service.ConsentService
	Logger   *zap.SugaredLogger
}

func NewConsentHandler(consents *service.ConsentService, logger *zap.SugaredLogger) *ConsentHandler {
	return &ConsentHandler{Consents: consents, Logger: logger}
}

func (h *ConsentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	c, err := h.Consents.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "GetConsent", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Update меняет только переданные поля
func (h *ConsentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	var req service.ConsentUpdate
	if !decodeJSON(w, r, h.Logger, "UpdateConsent", &req) {
		return
	}
	c, err := h.Consents.Update(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.Logger, "UpdateConsent", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
