package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTrapHit_ScoreMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	prev := -1.0
	for i := 1; i <= 5; i++ {
		_, err := env.svc.Risk.RecordTrapHit(ctx, "partner-x", owner.ID, nil, model.SeverityMedium)
		require.NoError(t, err)
		p, err := env.svc.Risk.GetPartner(ctx, "partner-x")
		require.NoError(t, err)
		assert.Equal(t, i, p.TrapHits)
		assert.GreaterOrEqual(t, p.RiskScore, prev)
		prev = p.RiskScore
		if i >= 3 {
			assert.Equal(t, model.PartnerRestricted, p.Status)
		}
	}

	_, err := env.svc.Risk.RecordTrapHit(ctx, "partner-x", owner.ID, nil, "critical")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEvaluatePartnerStatus_Unknown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Risk.EvaluatePartnerStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManualBlockUnblock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	_, err := env.svc.Risk.RecordTrapHit(ctx, "p1", owner.ID, nil, model.SeverityLow)
	require.NoError(t, err)

	p, err := env.svc.Risk.ManualBlock(ctx, "p1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.PartnerRestricted, p.Status)
	assert.True(t, p.ManualBlock)

	_, err = env.svc.Risk.ManualBlock(ctx, "p1", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	p, err = env.svc.Risk.ManualUnblock(ctx, "p1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.PartnerActive, p.Status)

	hist, err := env.svc.Risk.StatusHistory(ctx, "p1")
	require.NoError(t, err)
	causes := make([]string, 0, len(hist))
	for _, h := range hist {
		causes = append(causes, h.Cause)
	}
	assert.Equal(t, []string{model.CauseManualBlock, model.CauseManualUnblock}, causes)
	assert.Equal(t, "admin-1", hist[0].ActorID)

	_, err = env.svc.Risk.ManualBlock(ctx, "ghost", "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManualUnblock_KeepsAutomaticRestriction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	for i := 0; i < 3; i++ {
		_, err := env.svc.Risk.RecordTrapHit(ctx, "p2", owner.ID, nil, model.SeverityHigh)
		require.NoError(t, err)
	}
	_, err := env.svc.Risk.ManualBlock(ctx, "p2", "admin")
	require.NoError(t, err)

	p, err := env.svc.Risk.ManualUnblock(ctx, "p2", "admin")
	require.NoError(t, err)
	assert.Equal(t, model.PartnerRestricted, p.Status)
	assert.False(t, p.ManualBlock)

	hist, err := env.svc.Risk.StatusHistory(ctx, "p2")
	require.NoError(t, err)
	require.NotEmpty(t, hist)
	assert.Equal(t, model.CauseAutomatic, hist[0].Cause)
}

func TestEscalateTrap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	tl, err := env.svc.Risk.RecordTrapHit(ctx, "p3", owner.ID, nil, model.SeverityMedium)
	require.NoError(t, err)

	got, err := env.svc.Risk.EscalateTrap(ctx, tl.ID)
	require.NoError(t, err)
	assert.True(t, got.Escalated)

	_, err = env.svc.Risk.EscalateTrap(ctx, tl.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.svc.Risk.EscalateTrap(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(1), env.trapCount(t, repo.TrapFilter{UserID: owner.ID}))
}

// Тест: признаки поведения считаются при пересчёте и не меняют балл
func TestEvaluatePartnerStatus_Traits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	orig := timeNow
	now := time.Date(2026, 3, 4, 2, 30, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })

	_, err := env.svc.Risk.RecordTrapHit(ctx, "p1", owner.ID, nil, model.SeverityLow)
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		require.NoError(t, env.st.AccessLogs.Create(ctx, &model.AccessLog{
			ID: fmt.Sprintf("log-%d", i), ActorID: "p1", Action: model.ActionDataRequest,
			Outcome: model.OutcomeGranted, Timestamp: now.Add(-time.Minute), Digest: "d",
		}))
	}

	p, err := env.svc.Risk.EvaluatePartnerStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reckless", "nocturnal", "bursty"}, p.Traits)
	// 1 ловушка (1.5) + 7/100 объёма (0.07) -> 1.6
	assert.Equal(t, 1.6, p.RiskScore)
	assert.Equal(t, model.PartnerActive, p.Status)

	// днём и после окна всплеска остаётся только reckless
	now = time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	p, err = env.svc.Risk.EvaluatePartnerStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reckless"}, p.Traits)
}
