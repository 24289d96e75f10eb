package handlers

import (
	"DataSentinel/internal/middleware"
	"DataSentinel/internal/service"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
)

// maxJSONBody: лимит тела JSON-запроса.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON читает тело запроса; при ошибке отвечает 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warnw(op+": invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor переводит ошибку сервиса в HTTP-статус.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrLoginTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrConsentExpired),
		errors.Is(err, service.ErrConsentDenied),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает статусом по ошибке сервиса. Текст внутренних ошибок клиенту не отдаётся.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", status)
		return
	}
	logger.Infow(op+": rejected", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

// caller: пользователь запроса. Маршруты с RequireAuth гарантируют наличие id.
func caller(r *http.Request) (string, bool) {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id, middleware.IsAdmin(r.Context())
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
