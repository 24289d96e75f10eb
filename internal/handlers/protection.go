package handlers

import (
	"DataSentinel/internal/service"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProtectionHandler: honeytoken, водяные знаки, политики и запросы партнёров.
type ProtectionHandler struct {
	Protection *service.ProtectionService
	Logger     *zap.SugaredLogger
}

func NewProtectionHandler(protection *service.ProtectionService, logger *zap.SugaredLogger) *ProtectionHandler {
	return &ProtectionHandler{Protection: protection, Logger: logger}
}

type honeytokenBody struct {
	PartnerID string `json:"partnerId,omitempty"`
}

type watermarkBody struct {
	PartnerID string `json:"partnerId"`
	UserID    string `json:"userId,omitempty"`
	Timestamp string `json:"timestamp"`
}

type policyBody struct {
	Purpose        string `json:"purpose"`
	RetentionDays  int    `json:"retentionDays"`
	GeoRestriction string `json:"geoRestriction"`
}

type dataRequestBody struct {
	Purpose string   `json:"purpose"`
	Region  string   `json:"region"`
	UserIDs []string `json:"userIds"`
}

// GenerateHoneytoken запись-ловушка для текущего пользователя
func (h *ProtectionHandler) GenerateHoneytoken(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	var req honeytokenBody
	if !decodeJSON(w, r, h.Logger, "GenerateHoneytoken", &req) {
		return
	}
	token, err := h.Protection.GenerateHoneytoken(r.Context(), userID, req.PartnerID)
	if err != nil {
		writeError(w, h.Logger, "GenerateHoneytoken", err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

// GenerateWatermark водяной знак; пользователь маркирует свои данные, администратор: любые
func (h *ProtectionHandler) GenerateWatermark(w http.ResponseWriter, r *http.Request) {
	userID, admin := caller(r)
	var req watermarkBody
	if !decodeJSON(w, r, h.Logger, "GenerateWatermark", &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = userID
	}
	if req.UserID != userID && !admin {
		writeError(w, h.Logger, "GenerateWatermark", fmt.Errorf("watermark for %s: %w", req.UserID, service.ErrForbidden))
		return
	}

	wm, err := h.Protection.GenerateWatermark(r.Context(), req.PartnerID, req.UserID, req.Timestamp)
	if err != nil {
		writeError(w, h.Logger, "GenerateWatermark", err)
		return
	}
	writeJSON(w, http.StatusOK, wm)
}

// LookupWatermark поиск водяного знака по токену
func (h *ProtectionHandler) LookupWatermark(w http.ResponseWriter, r *http.Request) {
	wm, err := h.Protection.LookupWatermark(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "LookupWatermark", err)
		return
	}
	writeJSON(w, http.StatusOK, wm)
}

// GeneratePolicy политика использования данных текущего пользователя
func (h *ProtectionHandler) GeneratePolicy(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	var req policyBody
	if !decodeJSON(w, r, h.Logger, "GeneratePolicy", &req) {
		return
	}
	p, err := h.Protection.GeneratePolicy(r.Context(), service.PolicyInput{
		UserID:         userID,
		Purpose:        req.Purpose,
		RetentionDays:  req.RetentionDays,
		GeoRestriction: req.GeoRestriction,
	})
	if err != nil {
		writeError(w, h.Logger, "GeneratePolicy", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProtectionHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	policies, err := h.Protection.ListPolicies(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListPolicies", err)
		return
	}
	writeJSON(w, http.StatusOK, policies)
}

func (h *ProtectionHandler) DeactivatePolicy(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	p, err := h.Protection.DeactivatePolicy(r.Context(), chi.URLParam(r, "policyID"), userID)
	if err != nil {
		writeError(w, h.Logger, "DeactivatePolicy", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DataRequest запрос партнёра (текущего пользователя) на обработку данных
func (h *ProtectionHandler) DataRequest(w http.ResponseWriter, r *http.Request) {
	partnerID, _ := caller(r)
	var req dataRequestBody
	if !decodeJSON(w, r, h.Logger, "DataRequest", &req) {
		return
	}
	decisions, err := h.Protection.PartnerDataRequest(r.Context(), service.DataRequestInput{
		PartnerID:  partnerID,
		Purpose:    req.Purpose,
		Region:     req.Region,
		UserIDs:    req.UserIDs,
		RemoteAddr: remoteAddr(r),
	})
	if err != nil {
		writeError(w, h.Logger, "DataRequest", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}
