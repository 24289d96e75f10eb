package handlers

import (
	"DataSentinel/internal/repo"
	"DataSentinel/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler: журналы, партнёры и сводки для администраторов.
type AdminHandler struct {
	Svc    *service.Services
	Logger *zap.SugaredLogger
}

func NewAdminHandler(svc *service.Services, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// queryLimit читает ?limit=; некорректное значение игнорируется.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// queryTime читает RFC3339-время из параметра запроса.
func queryTime(r *http.Request, key string) (*time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// TrapLogs ?user=&partner=&limit=
func (h *AdminHandler) TrapLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := h.Svc.Dashboard.AdminTrapLogs(r.Context(), repo.TrapFilter{
		UserID:    q.Get("user"),
		PartnerID: q.Get("partner"),
		Limit:     queryLimit(r),
	})
	if err != nil {
		writeError(w, h.Logger, "TrapLogs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *AdminHandler) EscalateTrap(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.Risk.EscalateTrap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "EscalateTrap", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *AdminHandler) Partners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Svc.Risk.ListPartners(r.Context())
	if err != nil {
		writeError(w, h.Logger, "Partners", err)
		return
	}
	writeJSON(w, http.StatusOK, partners)
}

// Partner текущий статус партнёра с пересчётом по действующим порогам
func (h *AdminHandler) Partner(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Risk.EvaluatePartnerStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "Partner", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) PartnerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Svc.Risk.StatusHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "PartnerHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	adminID, _ := caller(r)
	p, err := h.Svc.Risk.ManualBlock(r.Context(), chi.URLParam(r, "id"), adminID)
	if err != nil {
		writeError(w, h.Logger, "Block", err)
		return
	}
	h.Logger.Infow("partner blocked manually", "partner_id", p.ID, "admin_id", adminID)
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	adminID, _ := caller(r)
	p, err := h.Svc.Risk.ManualUnblock(r.Context(), chi.URLParam(r, "id"), adminID)
	if err != nil {
		writeError(w, h.Logger, "Unblock", err)
		return
	}
	h.Logger.Infow("partner unblocked manually", "partner_id", p.ID, "admin_id", adminID)
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) PartnerActivity(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.Dashboard.PartnerActivitySummary(r.Context())
	if err != nil {
		writeError(w, h.Logger, "PartnerActivity", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.Dashboard.UserActivitySummary(r.Context())
	if err != nil {
		writeError(w, h.Logger, "UserActivity", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) RiskOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Svc.Dashboard.RiskOverview(r.Context())
	if err != nil {
		writeError(w, h.Logger, "RiskOverview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// AccessLogs ?user=&partner=&file=&from=&to=&limit= (время в RFC3339)
func (h *AdminHandler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	from, okFrom := queryTime(r, "from")
	to, okTo := queryTime(r, "to")
	if !okFrom || !okTo {
		http.Error(w, "invalid time range", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	logs, err := h.Svc.Audit.Query(r.Context(), repo.AccessLogFilter{
		UserID:    q.Get("user"),
		PartnerID: q.Get("partner"),
		FileID:    q.Get("file"),
		From:      from,
		To:        to,
		Limit:     queryLimit(r),
	})
	if err != nil {
		writeError(w, h.Logger, "AccessLogs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// VerifyAccessLogs пересчитывает дайджесты журнала
func (h *AdminHandler) VerifyAccessLogs(w http.ResponseWriter, r *http.Request) {
	tampered, err := h.Svc.Audit.Verify(r.Context())
	if err != nil {
		writeError(w, h.Logger, "VerifyAccessLogs", err)
		return
	}
	if tampered == nil {
		tampered = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": len(tampered) == 0, "tampered": tampered})
}
