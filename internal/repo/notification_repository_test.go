package repo

import (
	"DataSentinel/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Visibility(t *testing.T) {
	db := newTestDB(t)
	r := NewNotificationRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, r.Create(ctx, &model.Notification{ID: "n1", UserID: "u1", Kind: model.NotifyInfo, Message: "hi", CreatedAt: now}))
	require.NoError(t, r.Create(ctx, &model.Notification{ID: "n2", Audience: model.AudienceAdmins, Kind: model.NotifyThreat, Severity: model.SeverityHigh, Message: "trap", CreatedAt: now.Add(time.Second)}))

	mine, err := r.ListFor(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "n1", mine[0].ID)

	admin, err := r.ListFor(ctx, "root", true)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, "n2", admin[0].ID)

	// чужое уведомление пометить нельзя
	ok, err := r.MarkRead(ctx, "n1", "u2", false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.MarkRead(ctx, "n1", "u1", false)
	require.NoError(t, err)
	assert.True(t, ok)

	mine, err = r.ListFor(ctx, "u1", false)
	require.NoError(t, err)
	assert.True(t, mine[0].Read)
}
