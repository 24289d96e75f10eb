package notify

import (
	"DataSentinel/internal/model"
	"sync"
)

// Subscription: подписка одного клиента на поток уведомлений.
type Subscription struct {
	UserID string
	Admin  bool
	C      chan model.Notification
}

// Hub раздаёт уведомления активным подписчикам (websocket-потокам).
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe регистрирует получателя; admin получает также уведомления для администраторов.
func (h *Hub) Subscribe(userID string, admin bool) *Subscription {
	s := &Subscription{UserID: userID, Admin: admin, C: make(chan model.Notification, 16)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.C)
	}
	h.mu.Unlock()
}

// Publish не блокируется: медленный подписчик теряет уведомление, оно остаётся в БД.
func (h *Hub) Publish(n model.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.subs {
		if !visible(s, n) {
			continue
		}
		select {
		case s.C <- n:
			delivered++
		default:
		}
	}
	return delivered
}

func visible(s *Subscription, n model.Notification) bool {
	if n.UserID != "" && n.UserID == s.UserID {
		return true
	}
	return s.Admin && n.Audience == model.AudienceAdmins
}
