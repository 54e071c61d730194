package warmup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/utils"
)

func TestDailySnapshotWritesOneRowPerMailbox(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	a.WarmupDaysCompleted = 10
	a.EmailsSentToday = 4
	a.TotalEmailsSent = 40
	a.ReplyCount = 6
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(1, a, b)

	result, err := env.service.RunDailySnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Written)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Errors)

	logs, err := env.dailyLogs.ListSince(context.Background(), []string{a.ID}, utils.StartOfDay(utils.Now()))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].EmailsSent)
	assert.Equal(t, 10, logs[0].WarmupDay)
	assert.Equal(t, 2, logs[0].Phase)
	assert.Equal(t, 5, logs[0].DailyLimit)
	assert.Greater(t, logs[0].HealthScore, 0.0)
}

func TestDailySnapshotIsIdempotent(t *testing.T) {
	env := newTestEnv(1, warmingMailbox("a@warm.test", 5))

	first, err := env.service.RunDailySnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Written)

	second, err := env.service.RunDailySnapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Written)
	assert.Equal(t, 1, second.Skipped)
}

func TestResetDailyQuotas(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	a.EmailsSentToday = 5
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(1, a, b)

	reset, err := env.service.ResetDailyQuotas(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), reset, "only mailboxes with sends get touched")
	assert.Zero(t, a.EmailsSentToday)
}

func TestCheckSendEligibility(t *testing.T) {
	active := warmingMailbox("a@warm.test", 10)
	active.WarmupStatus = enum.WarmupStatusActive
	active.EmailsSentToday = 4
	warming := warmingMailbox("b@warm.test", 10)
	env := newTestEnv(1, active, warming)

	got, err := env.service.CheckSendEligibility(context.Background(), active.ID)
	require.NoError(t, err)
	assert.True(t, got.Eligible)
	assert.Equal(t, 6, got.RemainingQuota)

	got, err = env.service.CheckSendEligibility(context.Background(), warming.ID)
	require.NoError(t, err)
	assert.False(t, got.Eligible, "warming mailboxes are off limits for campaigns")
}
