package handlers

import (
	"DataSentinel/internal/notify"
	"DataSentinel/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const streamWriteTimeout = 5 * time.Second

// NotificationHandler: уведомления пользователя и их поток по websocket.
type NotificationHandler struct {
	Notifications *service.NotificationService
	Hub           *notify.Hub
	Logger        *zap.SugaredLogger
}

func NewNotificationHandler(notifications *service.NotificationService, hub *notify.Hub, logger *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications, Hub: hub, Logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, admin := caller(r)
	items, err := h.Notifications.List(r.Context(), userID, admin)
	if err != nil {
		writeError(w, h.Logger, "ListNotifications", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, admin := caller(r)
	if err := h.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), userID, admin); err != nil {
		writeError(w, h.Logger, "MarkRead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream отдаёт новые уведомления пользователя по websocket до закрытия соединения.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
		return
	}
	userID, admin := caller(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.Logger.Warnw("Stream: websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	sub := h.Hub.Subscribe(userID, admin)
	defer h.Hub.Unsubscribe(sub)

	// входящие сообщения не ожидаются; CloseRead отменит ctx при закрытии клиентом
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case n, ok := <-sub.C:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(writeCtx, conn, n)
			cancel()
			if err != nil {
				h.Logger.Infow("Stream: write failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}
