package warmup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/utils"
)

type stubBlacklist struct {
	result *models.BlacklistCheckResult
	err    error
}

func (s *stubBlacklist) RunCheck(ctx context.Context, mailboxID string) (*models.BlacklistCheckResult, error) {
	return s.result, s.err
}

func (s *stubBlacklist) RunAllChecks(ctx context.Context) (int, int) { return 0, 0 }

func recoveringMailbox(email string, limit, days int) *models.Mailbox {
	mb := warmingMailbox(email, limit)
	mb.WarmupStatus = enum.WarmupStatusRecovering
	mb.RecoveryStartedAt = utils.TimePtr(utils.Now().Add(-time.Duration(days) * 24 * time.Hour))
	mb.RecoveryDays = days
	return mb
}

func TestRecoveryRampSequence(t *testing.T) {
	mb := recoveringMailbox("a@warm.test", 2, 0)
	env := newTestEnv(1, mb)

	// ceil(limit * 1.5) each day, completion only at limit >= 25 and day >= 7
	expected := []int{3, 5, 8, 12, 18, 27, 35}
	for day, want := range expected {
		result, err := env.service.RunRecoveryCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, mb.DailySendLimit, "day %d", day+1)
		if day < len(expected)-1 {
			assert.Zero(t, result.Completed, "day %d should not complete", day+1)
			assert.Equal(t, enum.WarmupStatusRecovering, mb.WarmupStatus)
		} else {
			assert.Equal(t, 1, result.Completed)
		}
	}

	// Completion resets the warmup ramp from the beginning.
	assert.Equal(t, enum.WarmupStatusWarmingUp, mb.WarmupStatus)
	assert.Zero(t, mb.RecoveryDays)
	assert.Nil(t, mb.RecoveryStartedAt)
	assert.Zero(t, mb.WarmupDaysCompleted)
	assert.Equal(t, 1, mb.CurrentPhase)
}

func TestRecoveryDoesNotCompleteBeforeMinDays(t *testing.T) {
	mb := recoveringMailbox("a@warm.test", 30, 2)
	env := newTestEnv(1, mb)

	result, err := env.service.RunRecoveryCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 35, mb.DailySendLimit, "capped at the ramp ceiling")
	assert.Zero(t, result.Completed)
	assert.Equal(t, enum.WarmupStatusRecovering, mb.WarmupStatus)
}

func TestRecoveryStartsForPausedMailboxAfterWait(t *testing.T) {
	mb := warmingMailbox("a@warm.test", 20)
	mb.WarmupStatus = enum.WarmupStatusPaused
	mb.PausedAt = utils.TimePtr(utils.Now().Add(-4 * 24 * time.Hour))
	env := newTestEnv(1, mb)

	result, err := env.service.RunRecoveryCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.AutoStarted)
	assert.Equal(t, enum.WarmupStatusRecovering, mb.WarmupStatus)
	assert.Equal(t, 2, mb.DailySendLimit, "recovery starts at the seed limit")
	assert.Zero(t, mb.EmailsSentToday)
	assert.Nil(t, mb.PausedAt)

	alerts, err := env.alerts.List(context.Background(), false, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, enum.AlertTypeAutoRecovered, alerts[0].AlertType)
}

func TestRecoveryLeavesRecentlyPausedAlone(t *testing.T) {
	mb := warmingMailbox("a@warm.test", 20)
	mb.WarmupStatus = enum.WarmupStatusPaused
	mb.PausedAt = utils.TimePtr(utils.Now().Add(-2 * 24 * time.Hour))
	env := newTestEnv(1, mb)

	result, err := env.service.RunRecoveryCheck(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.AutoStarted)
	assert.Equal(t, enum.WarmupStatusPaused, mb.WarmupStatus)
}

func TestRecoveryCheckSkipsWhenDisabled(t *testing.T) {
	mb := recoveringMailbox("a@warm.test", 2, 0)
	env := newTestEnv(1, mb)
	env.settings.values["warmup_auto_recovery_enabled"] = "false"

	result, err := env.service.RunRecoveryCheck(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 2, mb.DailySendLimit)
}

func TestRecoverFromBlacklistRequiresCleanCheck(t *testing.T) {
	mb := warmingMailbox("a@warm.test", 20)
	mb.WarmupStatus = enum.WarmupStatusBlacklisted
	env := newTestEnv(1, mb)

	stillListed := &stubBlacklist{result: &models.BlacklistCheckResult{IsClean: false, TotalListed: 2}}
	err := env.service.RecoverFromBlacklist(context.Background(), mb.ID, stillListed)
	require.Error(t, err)
	assert.Equal(t, enum.WarmupStatusBlacklisted, mb.WarmupStatus)

	clean := &stubBlacklist{result: &models.BlacklistCheckResult{IsClean: true}}
	err = env.service.RecoverFromBlacklist(context.Background(), mb.ID, clean)
	require.NoError(t, err)
	assert.Equal(t, enum.WarmupStatusRecovering, mb.WarmupStatus)
	assert.Equal(t, 2, mb.DailySendLimit)
}

func TestRecoverFromBlacklistRejectsNonBlacklisted(t *testing.T) {
	mb := warmingMailbox("a@warm.test", 20)
	env := newTestEnv(1, mb)

	clean := &stubBlacklist{result: &models.BlacklistCheckResult{IsClean: true}}
	err := env.service.RecoverFromBlacklist(context.Background(), mb.ID, clean)
	require.Error(t, err)
}
