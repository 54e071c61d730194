package warmup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/utils"
)

func defaultTestConfig() *Config {
	return LoadConfig(context.Background(), &memSettings{values: map[string]string{}})
}

func scoredMailbox(totalSent, bounces, replies, complaints int, ageDays int) *models.Mailbox {
	return &models.Mailbox{
		TotalEmailsSent: totalSent,
		BounceCount:     bounces,
		ReplyCount:      replies,
		ComplaintCount:  complaints,
		CreatedAt:       utils.Now().Add(-time.Duration(ageDays) * 24 * time.Hour),
	}
}

func TestHealthScoreNeutralBelowScoringMinimum(t *testing.T) {
	cfg := defaultTestConfig()
	mb := scoredMailbox(5, 5, 0, 5, 0)

	health := CalculateHealthScore(mb, cfg, utils.Now())

	assert.False(t, health.Scored)
	assert.Equal(t, 50.0, health.HealthScore)
}

func TestHealthScorePerfectMailbox(t *testing.T) {
	cfg := defaultTestConfig()
	// 100 sent, no bounces/complaints, reply rate 15% (above good), 90+ days old
	mb := scoredMailbox(100, 0, 15, 0, 120)

	health := CalculateHealthScore(mb, cfg, utils.Now())

	require.True(t, health.Scored)
	assert.Equal(t, 100.0, health.HealthScore)
	assert.Equal(t, 100.0, health.BounceScore)
	assert.Equal(t, 100.0, health.ReplyScore)
	assert.Equal(t, 100.0, health.ComplaintScore)
	assert.Equal(t, 100.0, health.AgeScore)
}

func TestHealthScoreBounceInterpolation(t *testing.T) {
	cfg := defaultTestConfig()
	// bounce rate 3.5% sits midway between good (2.0) and bad (5.0)
	mb := scoredMailbox(200, 7, 0, 0, 90)

	health := CalculateHealthScore(mb, cfg, utils.Now())

	assert.InDelta(t, 50.0, health.BounceScore, 0.01)
	assert.InDelta(t, 3.5, health.BounceRate, 0.01)
}

func TestHealthScoreMonotonicity(t *testing.T) {
	cfg := defaultTestConfig()
	now := utils.Now()

	base := CalculateHealthScore(scoredMailbox(1000, 20, 50, 0, 45), cfg, now)
	moreBounces := CalculateHealthScore(scoredMailbox(1000, 40, 50, 0, 45), cfg, now)
	moreReplies := CalculateHealthScore(scoredMailbox(1000, 20, 80, 0, 45), cfg, now)
	moreComplaints := CalculateHealthScore(scoredMailbox(1000, 20, 50, 5, 45), cfg, now)
	older := CalculateHealthScore(scoredMailbox(1000, 20, 50, 0, 80), cfg, now)

	assert.LessOrEqual(t, moreBounces.HealthScore, base.HealthScore)
	assert.GreaterOrEqual(t, moreReplies.HealthScore, base.HealthScore)
	assert.LessOrEqual(t, moreComplaints.HealthScore, base.HealthScore)
	assert.GreaterOrEqual(t, older.HealthScore, base.HealthScore)
}

func TestHealthScoreDeterministic(t *testing.T) {
	cfg := defaultTestConfig()
	now := utils.Now()
	mb := scoredMailbox(500, 10, 30, 1, 60)

	first := CalculateHealthScore(mb, cfg, now)
	second := CalculateHealthScore(mb, cfg, now)

	assert.Equal(t, first, second)
}
