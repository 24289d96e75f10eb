package notify

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQueueSize: размер очереди, если в конфигурации не задан.
const DefaultQueueSize = 256

const persistTimeout = 5 * time.Second

// Dispatcher доставляет уведомления асинхронно: сохраняет в БД, раздаёт подписчикам
// и отправляет на webhooks. Notify никогда не блокирует вызывающего.
type Dispatcher struct {
	store    repo.NotificationRepository
	hub      *Hub
	webhooks []string
	logger   *zap.SugaredLogger

	mu     sync.RWMutex
	closed bool
	queue  chan model.Notification
	done   chan struct{}
	sends  sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher создаёт диспетчер и запускает обработчик очереди.
func NewDispatcher(store repo.NotificationRepository, hub *Hub, webhooks []string, queueSize int, logger *zap.SugaredLogger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if hub == nil {
		hub = NewHub()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store:    store,
		hub:      hub,
		webhooks: webhooks,
		logger:   logger,
		queue:    make(chan model.Notification, queueSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go d.run()
	return d
}

// Hub возвращает раздатчик для потоковых подписок.
func (d *Dispatcher) Hub() *Hub { return d.hub }

// Notify ставит уведомление в очередь. При переполненной или закрытой очереди
// уведомление отбрасывается с предупреждением в журнале.
func (d *Dispatcher) Notify(n model.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Severity == "" {
		n.Severity = model.SeverityLow
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warnw("notification dropped: dispatcher closed", "kind", n.Kind, "user_id", n.UserID)
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warnw("notification dropped: queue full", "kind", n.Kind, "user_id", n.UserID)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n model.Notification) {
	ctx, cancel := context.WithTimeout(d.ctx, persistTimeout)
	err := d.store.Create(ctx, &n)
	cancel()
	if err != nil {
		d.logger.Errorw("failed to persist notification", "id", n.ID, "error", err)
	}

	d.hub.Publish(n)

	for _, url := range d.webhooks {
		d.sends.Add(1)
		go func(url string) {
			defer d.sends.Done()
			if err := Send(d.ctx, url, n); err != nil {
				d.logger.Warnw("webhook delivery failed", "url", url, "id", n.ID, "error", err)
			}
		}(url)
	}
}

// Close дожидается доставки накопленных уведомлений и останавливает обработчик.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	d.sends.Wait()
	d.cancel()
}
