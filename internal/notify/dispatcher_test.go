package notify

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockNotificationRepo struct{ mock.Mock }

var _ repo.NotificationRepository = (*mockNotificationRepo)(nil)

func (m *mockNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) ListFor(ctx context.Context, userID string, admin bool) ([]model.Notification, error) {
	args := m.Called(ctx, userID, admin)
	list, _ := args.Get(0).([]model.Notification)
	return list, args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string, admin bool) (bool, error) {
	args := m.Called(ctx, id, userID, admin)
	return args.Bool(0), args.Error(1)
}

func TestDispatcher_PersistsAndPublishes(t *testing.T) {
	store := new(mockNotificationRepo)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	hub := NewHub()
	sub := hub.Subscribe("u1", false)
	admin := hub.Subscribe("root", true)

	d := NewDispatcher(store, hub, nil, 8, zap.NewNop().Sugar())
	d.Notify(model.Notification{UserID: "u1", Kind: model.NotifyThreat, Message: "trap"})
	d.Notify(model.Notification{Audience: model.AudienceAdmins, Kind: model.NotifySystem, Message: "restricted"})
	d.Close()

	store.AssertNumberOfCalls(t, "Create", 2)

	got := <-sub.C
	assert.Equal(t, "trap", got.Message)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, model.SeverityLow, got.Severity)
	assert.Len(t, sub.C, 0)

	got = <-admin.C
	assert.Equal(t, "restricted", got.Message)
}

func TestDispatcher_NotifyNeverBlocks(t *testing.T) {
	store := new(mockNotificationRepo)
	release := make(chan struct{})
	store.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { <-release }).Return(nil)

	d := NewDispatcher(store, nil, nil, 1, zap.NewNop().Sugar())
	start := time.Now()
	for i := 0; i < 50; i++ {
		d.Notify(model.Notification{UserID: "u1", Kind: model.NotifyInfo, Message: "x"})
	}
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	d.Close()
	// один в обработке и один в очереди, остальные отброшены
	assert.LessOrEqual(t, len(store.Calls), 2)

	// после закрытия уведомления отбрасываются без паники
	d.Notify(model.Notification{UserID: "u1", Kind: model.NotifyInfo, Message: "late"})
}

func TestDispatcher_Webhooks(t *testing.T) {
	retryDelay = 10 * time.Millisecond
	defer func() { retryDelay = time.Second }()

	var calls atomic.Int32
	var kind atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		kind.Store(p.Notification.Kind)
		// первый ответ 5xx, затем успех
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := new(mockNotificationRepo)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	d := NewDispatcher(store, nil, []string{srv.URL}, 4, zap.NewNop().Sugar())
	d.Notify(model.Notification{UserID: "u1", Kind: model.NotifyThreat, Message: "trap"})
	d.Close()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, model.NotifyThreat, kind.Load())
}

func TestSend_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := Send(context.Background(), srv.URL, model.Notification{ID: "n1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe("u1", false)
	hub.Unsubscribe(s)
	hub.Unsubscribe(s)
	assert.Equal(t, 0, hub.Publish(model.Notification{UserID: "u1"}))
	_, ok := <-s.C
	assert.False(t, ok)
}
