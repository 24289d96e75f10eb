package service

import (
	"DataSentinel/internal/blobstore"
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLock_SerializesPerKey(t *testing.T) {
	k := NewKeyLock()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("file:1")
			defer unlock()
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
	assert.Zero(t, k.size())

	// разные ключи независимы
	u1 := k.Lock("a")
	u2 := k.Lock("b")
	assert.Equal(t, 2, k.size())
	u1()
	u2()
}

func TestEscalations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "victim")

	_, err := env.svc.Escalations.RequestAdminAction(ctx, u.ID, "unknown", "leak")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Risk.RecordTrapHit(ctx, "bad-partner", u.ID, nil, model.SeverityLow)
	require.NoError(t, err)

	_, err = env.svc.Escalations.RequestAdminAction(ctx, u.ID, "bad-partner", " ")
	assert.ErrorIs(t, err, ErrValidation)

	e, err := env.svc.Escalations.RequestAdminAction(ctx, u.ID, "bad-partner", "my data showed up in a spam list")
	require.NoError(t, err)
	assert.Equal(t, model.EscalationOpen, e.Status)

	open, err := env.svc.Escalations.List(ctx, model.EscalationOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	e, err = env.svc.Escalations.Resolve(ctx, e.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.EscalationResolved, e.Status)

	_, err = env.svc.Escalations.Resolve(ctx, e.ID, "admin")
	assert.ErrorIs(t, err, ErrInvalidState)

	admins := env.notifier.find(func(n model.Notification) bool { return n.Audience == model.AudienceAdmins })
	assert.Len(t, admins, 1)
}

func TestNotificationService_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.st.Notifications.Create(ctx, &model.Notification{ID: "n1", UserID: "u1", Kind: model.NotifyInfo, Message: "hello", CreatedAt: time.Now()}))

	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, "n1", "u2", false), ErrNotFound)
	require.NoError(t, env.svc.Notifications.MarkRead(ctx, "n1", "u1", false))

	list, err := env.svc.Notifications.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	partner := env.user(t, "partner")
	f := env.upload(t, owner, "data.csv")

	_, err := env.svc.Access.RequestAccess(ctx, RequestAccessInput{FileID: f.ID, RequesterID: partner.ID, Honeytoken: "nope"})
	require.NoError(t, err)

	alerts, err := env.svc.Dashboard.FileAlerts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
	none, err := env.svc.Dashboard.FileAlerts(ctx, partner.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	traps, err := env.svc.Dashboard.AdminTrapLogs(ctx, repo.TrapFilter{})
	require.NoError(t, err)
	assert.Len(t, traps, 1)

	activity, err := env.svc.Dashboard.PartnerActivitySummary(ctx)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, partner.ID, activity[0].PartnerID)
	assert.Equal(t, "partner", activity[0].Name)
	assert.Equal(t, 1, activity[0].TrapHits)

	users, err := env.svc.Dashboard.UserActivitySummary(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		if u.UserID == owner.ID {
			assert.Equal(t, int64(1), u.OwnedFiles)
			assert.Equal(t, int64(1), u.Alerts)
			assert.True(t, u.HoneytokenEnabled)
		}
	}

	o, err := env.svc.Dashboard.RiskOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.TotalAlerts)
	assert.Equal(t, 1, o.TrapHits)
	assert.Equal(t, 1.5, o.SystemRisk)
	assert.Equal(t, 1, o.Partners)
	assert.Zero(t, o.RestrictedPartners)
}

// memBlobs: хранилище содержимого в памяти.
type memBlobs struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (m *memBlobs) Put(_ context.Context, key string, content []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = content
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return c, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func TestFiles_UploadFailureRemovesBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	// запись honeytoken падает внутри транзакции
	require.NoError(t, env.db.Migrator().DropTable(&model.Honeytoken{}))

	_, err := env.svc.Files.Upload(ctx, UploadInput{OwnerID: owner.ID, Name: "a.txt", Content: []byte("data")})
	require.Error(t, err)

	var blobs, files int64
	require.NoError(t, env.db.Model(&model.Blob{}).Count(&blobs).Error)
	require.NoError(t, env.db.Model(&model.File{}).Count(&files).Error)
	assert.Zero(t, blobs)
	assert.Zero(t, files)

	// внешнее хранилище: объект тоже удаляется
	store := &memBlobs{items: map[string][]byte{}}
	svc := New(env.st, Options{Notifier: env.notifier, Blobs: store, MaxUploadBytes: 1 << 20})
	_, err = svc.Files.Upload(ctx, UploadInput{OwnerID: owner.ID, Name: "b.txt", Content: []byte("data")})
	require.Error(t, err)
	assert.Empty(t, store.items)
}

func TestFiles_UploadListDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	partner := env.user(t, "partner")
	stranger := env.user(t, "stranger")

	_, err := env.svc.Files.Upload(ctx, UploadInput{OwnerID: owner.ID, Name: "empty.txt"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Files.Upload(ctx, UploadInput{OwnerID: owner.ID, Name: "big.bin", Content: make([]byte, 2<<20)})
	assert.ErrorIs(t, err, ErrValidation)

	f := env.upload(t, owner, "../Report.PDF")
	assert.Equal(t, "Report.PDF", f.Name)
	assert.Equal(t, "pdf", f.Type)
	assert.True(t, f.Owned)

	view, err := env.svc.Files.PartnerView(ctx, partner.ID)
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.False(t, view[0].HasAccess)
	assert.False(t, view[0].PendingRequest)

	res, err := env.svc.Access.RequestAccess(ctx, RequestAccessInput{FileID: f.ID, RequesterID: partner.ID})
	require.NoError(t, err)
	view, err = env.svc.Files.PartnerView(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, view[0].PendingRequest)

	_, _, err = env.svc.Files.Download(ctx, f.ID, partner.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Access.ApproveAccess(ctx, res.RequestID, ActionApprove, owner.ID)
	require.NoError(t, err)

	_, content, err := env.svc.Files.Download(ctx, f.ID, partner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("quarterly numbers"), content)

	list, err := env.svc.Files.List(ctx, partner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Owned)
	assert.Empty(t, list[0].HoneytokenID)

	ownerList, err := env.svc.Files.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerList, 1)
	assert.Equal(t, []string{partner.ID}, ownerList[0].Shares)
	assert.NotEmpty(t, ownerList[0].HoneytokenID)

	none, err := env.svc.Files.List(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
