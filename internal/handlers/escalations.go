package handlers

import (
	"DataSentinel/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EscalationHandler: обращения к администраторам.
type EscalationHandler struct {
	Escalations *service.EscalationService
	Logger      *zap.SugaredLogger
}

func NewEscalationHandler(escalations *service.EscalationService, logger *zap.SugaredLogger) *EscalationHandler {
	return &EscalationHandler{Escalations: escalations, Logger: logger}
}

type escalationBody struct {
	PartnerID string `json:"partnerId"`
	Reason    string `json:"reason"`
}

func (h *EscalationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	var req escalationBody
	if !decodeJSON(w, r, h.Logger, "RequestAdminAction", &req) {
		return
	}
	e, err := h.Escalations.RequestAdminAction(r.Context(), userID, req.PartnerID, req.Reason)
	if err != nil {
		writeError(w, h.Logger, "RequestAdminAction", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// List обращения; ?status=open|resolved
func (h *EscalationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Escalations.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, h.Logger, "ListEscalations", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EscalationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	adminID, _ := caller(r)
	e, err := h.Escalations.Resolve(r.Context(), chi.URLParam(r, "id"), adminID)
	if err != nil {
		writeError(w, h.Logger, "ResolveEscalation", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
