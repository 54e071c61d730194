package warmup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/utils"
)

func seedSentEmail(env *testEnv, sender, receiver *models.Mailbox, sentAgo time.Duration) *models.WarmupEmail {
	now := utils.Now()
	email := &models.WarmupEmail{
		SenderMailboxID:   sender.ID,
		ReceiverMailboxID: &receiver.ID,
		Subject:           "Quick question for you",
		BodyText:          "Hey, how is the week going?",
		Status:            enum.WarmupEmailStatusSent,
		SentAt:            now.Add(-sentAgo),
		ReplyEligibleAt:   utils.TimePtr(now.Add(-time.Minute)),
	}
	_ = env.emails.Create(context.Background(), email)
	return email
}

func TestAutoReplyAnswersEligibleEmail(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(2, a, b)
	env.openWindow()
	env.settings.values["warmup_auto_reply_rate"] = "1.0"

	original := seedSentEmail(env, a, b, time.Hour)

	result, err := env.service.RunAutoReplyCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCandidates)
	assert.Equal(t, 1, result.Replied)
	assert.Zero(t, result.Failed)

	stored, err := env.emails.GetByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.WarmupEmailStatusReplied, stored.Status)
	require.NotNil(t, stored.RepliedAt)

	// The receiver authored the reply and spent its own quota on it.
	assert.Equal(t, 1, b.EmailsSentToday)
	assert.Equal(t, 1, a.ReplyCount)
	assert.Equal(t, 1, a.WarmupReplies)

	replies, err := env.emails.List(context.Background(), interfaces.WarmupEmailFilter{SenderMailboxID: b.ID})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "Re: "+original.Subject, replies[0].Subject)
	assert.Nil(t, replies[0].ReplyEligibleAt, "replies never become reply candidates")
}

func TestAutoReplyZeroRateSkipsEverything(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(2, a, b)
	env.openWindow()
	env.settings.values["warmup_auto_reply_rate"] = "0"

	seedSentEmail(env, a, b, time.Hour)

	result, err := env.service.RunAutoReplyCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCandidates)
	assert.Zero(t, result.Replied)
	assert.Equal(t, 1, result.SkippedEmails)
	assert.Zero(t, b.EmailsSentToday)
}

func TestAutoReplyIgnoresStaleAndFutureEmails(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(2, a, b)
	env.openWindow()
	env.settings.values["warmup_auto_reply_rate"] = "1.0"

	// Older than the 24h window.
	seedSentEmail(env, a, b, 30*time.Hour)
	// Delay has not elapsed yet.
	notYet := seedSentEmail(env, a, b, time.Hour)
	notYet.ReplyEligibleAt = utils.TimePtr(utils.Now().Add(time.Hour))

	result, err := env.service.RunAutoReplyCycle(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.TotalCandidates)
	assert.Zero(t, result.Replied)
}

func TestAutoReplyQuotaExhaustedCountsAsSkip(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 2)
	b.EmailsSentToday = 2
	env := newTestEnv(2, a, b)
	env.openWindow()
	env.settings.values["warmup_auto_reply_rate"] = "1.0"

	seedSentEmail(env, a, b, time.Hour)

	result, err := env.service.RunAutoReplyCycle(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Replied)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 1, result.SkippedEmails)
}

func TestAutoReplySkipsInactiveReplier(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	b.IsActive = false
	env := newTestEnv(2, a, b)
	env.openWindow()
	env.settings.values["warmup_auto_reply_rate"] = "1.0"

	seedSentEmail(env, a, b, time.Hour)

	result, err := env.service.RunAutoReplyCycle(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Replied)
	assert.Equal(t, 1, result.Failed)
}
