package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier запоминает уведомления синхронно.
type recordingNotifier struct {
	mu    sync.Mutex
	items []model.Notification
}

func (n *recordingNotifier) Notify(item model.Notification) {
	n.mu.Lock()
	n.items = append(n.items, item)
	n.mu.Unlock()
}

func (n *recordingNotifier) find(pred func(model.Notification) bool) []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.Notification
	for _, it := range n.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	st       *repo.Stores
	svc      *Services
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	st := repo.NewStores(db)
	n := &recordingNotifier{}
	return &testEnv{
		db:       db,
		st:       st,
		svc:      New(st, Options{Notifier: n, MaxUploadBytes: 1 << 20}),
		notifier: n,
	}
}

func (e *testEnv) user(t *testing.T, login string) *model.User {
	t.Helper()
	u, err := e.svc.Users.Register(context.Background(), login, "secret")
	require.NoError(t, err)
	return u
}

func (e *testEnv) upload(t *testing.T, owner *model.User, name string) *FileView {
	t.Helper()
	f, err := e.svc.Files.Upload(context.Background(), UploadInput{
		OwnerID:     owner.ID,
		Name:        name,
		ContentType: "text/plain",
		Content:     []byte("quarterly numbers"),
	})
	require.NoError(t, err)
	return f
}

func (e *testEnv) trapCount(t *testing.T, f repo.TrapFilter) int64 {
	t.Helper()
	n, err := e.st.TrapLogs.Count(context.Background(), f)
	require.NoError(t, err)
	return n
}

func (e *testEnv) requestCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.AccessRequest{}).Count(&n).Error)
	return n
}
