package handlers

import (
	"DataSentinel/internal/service"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// AccessHandler: запросы доступа к файлам и решения владельцев.
type AccessHandler struct {
	Access    *service.AccessService
	Dashboard *service.DashboardService
	Logger    *zap.SugaredLogger
}

func NewAccessHandler(access *service.AccessService, dashboard *service.DashboardService, logger *zap.SugaredLogger) *AccessHandler {
	return &AccessHandler{Access: access, Dashboard: dashboard, Logger: logger}
}

type accessRequestBody struct {
	FileID     string `json:"fileId"`
	Message    string `json:"message,omitempty"`
	Honeytoken string `json:"honeytoken,omitempty"`
}

type approveBody struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

// Request запрос доступа; requester: текущий пользователь
func (h *AccessHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	var req accessRequestBody
	if !decodeJSON(w, r, h.Logger, "RequestAccess", &req) {
		return
	}

	res, err := h.Access.RequestAccess(r.Context(), service.RequestAccessInput{
		FileID:      req.FileID,
		RequesterID: userID,
		Message:     req.Message,
		Honeytoken:  req.Honeytoken,
		RemoteAddr:  remoteAddr(r),
	})
	if err != nil {
		writeError(w, h.Logger, "RequestAccess", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Approve решение по запросу: владелец файла или администратор
func (h *AccessHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, admin := caller(r)
	var req approveBody
	if !decodeJSON(w, r, h.Logger, "ApproveAccess", &req) {
		return
	}

	existing, err := h.Access.GetRequest(r.Context(), req.RequestID)
	if err != nil {
		writeError(w, h.Logger, "ApproveAccess", err)
		return
	}
	if existing.OwnerID != userID && !admin {
		writeError(w, h.Logger, "ApproveAccess", fmt.Errorf("request %s: %w", req.RequestID, service.ErrForbidden))
		return
	}

	decided, err := h.Access.ApproveAccess(r.Context(), req.RequestID, req.Action, userID)
	if err != nil {
		writeError(w, h.Logger, "ApproveAccess", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": decided.Status})
}

// List запросы, созданные пользователем или адресованные ему
func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	reqs, err := h.Access.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListRequests", err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// FileAlerts срабатывания ловушек по файлам пользователя
func (h *AccessHandler) FileAlerts(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	alerts, err := h.Dashboard.FileAlerts(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "FileAlerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
