package warmup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
)

// openWindow widens the send window so cycles run regardless of wall clock.
func (env *testEnv) openWindow() {
	env.settings.values["warmup_send_window_start"] = "00:00"
	env.settings.values["warmup_send_window_end"] = "23:59"
	env.settings.values["warmup_skip_weekends"] = "false"
}

func TestPeerCycleSendsBetweenPeers(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(1, a, b)
	env.openWindow()

	result, err := env.service.RunPeerCycle(context.Background(), "")
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Greater(t, result.Sent, 0)
	assert.Zero(t, result.Failed)

	emails, err := env.emails.List(context.Background(), interfaces.WarmupEmailFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, emails)
	for _, e := range emails {
		assert.Equal(t, enum.WarmupEmailStatusSent, e.Status)
		assert.NotEmpty(t, e.TrackingID)
		assert.NotNil(t, e.ReplyEligibleAt)
		assert.Contains(t, e.BodyHTML, e.TrackingID, "tracking pixel embedded")
	}

	assert.LessOrEqual(t, a.EmailsSentToday, a.DailySendLimit)
	assert.LessOrEqual(t, b.EmailsSentToday, b.DailySendLimit)
}

func TestPeerCycleNeverExceedsDailyQuota(t *testing.T) {
	a := warmingMailbox("a@warm.test", 1)
	b := warmingMailbox("b@warm.test", 1)
	c := warmingMailbox("c@warm.test", 1)
	env := newTestEnv(7, a, b, c)
	env.openWindow()

	_, err := env.service.RunPeerCycle(context.Background(), "")
	require.NoError(t, err)

	for _, mb := range []*struct {
		email string
		limit int
	}{{"a@warm.test", 1}, {"b@warm.test", 1}, {"c@warm.test", 1}} {
		stored, err := env.mailboxes.GetMailboxByEmailAddress(context.Background(), mb.email)
		require.NoError(t, err)
		assert.LessOrEqual(t, stored.EmailsSentToday, mb.limit, "%s over quota", mb.email)
	}
}

func TestPeerCycleCountersMatchDeliveriesAcrossCycles(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	c := warmingMailbox("c@warm.test", 2)
	env := newTestEnv(11, a, b, c)
	env.openWindow()

	for i := 0; i < 10; i++ {
		_, err := env.service.RunPeerCycle(context.Background(), "")
		require.NoError(t, err)
	}

	// Every claimed quota slot produced exactly one delivery, so the
	// stored counter equals the sender's share of the stub's log.
	for _, mb := range []*models.Mailbox{a, b, c} {
		stored, err := env.mailboxes.GetMailboxByEmailAddress(context.Background(), mb.EmailAddress)
		require.NoError(t, err)
		assert.LessOrEqual(t, stored.EmailsSentToday, mb.DailySendLimit, "%s over quota", mb.EmailAddress)

		delivered := 0
		for _, s := range env.sender.sent {
			if s.From == mb.EmailAddress {
				delivered++
			}
		}
		assert.Equal(t, delivered, stored.EmailsSentToday, "%s counter drifted from deliveries", mb.EmailAddress)
	}
}

func TestPeerCycleSkipsWhenDisabled(t *testing.T) {
	env := newTestEnv(1, warmingMailbox("a@warm.test", 5), warmingMailbox("b@warm.test", 5))
	env.openWindow()
	env.settings.values["warmup_peer_enabled"] = "false"

	result, err := env.service.RunPeerCycle(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Zero(t, result.Sent)
}

func TestPeerCycleIsolatesTransportFailures(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(3, a, b)
	env.openWindow()
	env.sender.failFor["a@warm.test"] = errors.New("smtp: connection refused")

	result, err := env.service.RunPeerCycle(context.Background(), "")
	require.NoError(t, err)

	assert.Greater(t, result.Failed, 0, "a's sends fail")
	assert.Greater(t, result.Sent, 0, "b still sends")

	// Failed sends leave a FAILED record behind
	failed := 0
	emails, _ := env.emails.List(context.Background(), interfaces.WarmupEmailFilter{})
	for _, e := range emails {
		if e.Status == enum.WarmupEmailStatusFailed {
			failed++
		}
	}
	assert.Equal(t, result.Failed, failed)
}

func TestPeerCycleIgnoresIneligibleMailboxes(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	b.ConnectionStatus = enum.ConnectionStatusFailed
	env := newTestEnv(5, a, b)
	env.openWindow()

	result, err := env.service.RunPeerCycle(context.Background(), "")
	require.NoError(t, err)

	// a has no eligible peers, b is not a valid sender
	assert.Zero(t, result.Sent)
}
