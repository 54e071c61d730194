package warmup

import (
	"math"
	"time"

	"github.com/coldreach/warmstack/internal/models"
)

// HealthBreakdown carries the composite score plus its weighted components,
// mirrored into daily log snapshots and the health endpoint.
type HealthBreakdown struct {
	HealthScore    float64 `json:"healthScore"`
	BounceScore    float64 `json:"bounceScore"`
	ReplyScore     float64 `json:"replyScore"`
	ComplaintScore float64 `json:"complaintScore"`
	AgeScore       float64 `json:"ageScore"`
	BounceRate     float64 `json:"bounceRate"`
	ReplyRate      float64 `json:"replyRate"`
	ComplaintRate  float64 `json:"complaintRate"`
	AccountAgeDays int     `json:"accountAgeDays"`
	Scored         bool    `json:"scored"`
}

const neutralHealthScore = 50.0

// CalculateHealthScore computes the 0-100 reputation score from cumulative
// bounce/reply/complaint rates and account age. Mailboxes below the scoring
// minimum get a neutral score rather than a best-case one built on zero rates.
func CalculateHealthScore(mailbox *models.Mailbox, cfg *Config, now time.Time) HealthBreakdown {
	totalSent := mailbox.TotalEmailsSent

	ageDays := 0
	if !mailbox.CreatedAt.IsZero() {
		ageDays = int(now.Sub(mailbox.CreatedAt).Hours() / 24)
		if ageDays < 0 {
			ageDays = 0
		}
	}

	if totalSent < cfg.MinEmailsForScoring {
		return HealthBreakdown{
			HealthScore:    neutralHealthScore,
			AccountAgeDays: ageDays,
			Scored:         false,
		}
	}

	bounceRate := float64(mailbox.BounceCount) / float64(totalSent) * 100
	replyRate := float64(mailbox.ReplyCount) / float64(totalSent) * 100
	complaintRate := float64(mailbox.ComplaintCount) / float64(totalSent) * 100

	// Bounce rate score (lower is better)
	var bounceScore float64
	switch {
	case bounceRate <= cfg.BounceRateGood:
		bounceScore = 100
	case bounceRate >= cfg.BounceRateBad:
		bounceScore = 0
	default:
		bounceScore = 100 * (1 - (bounceRate-cfg.BounceRateGood)/(cfg.BounceRateBad-cfg.BounceRateGood))
	}

	// Reply rate score (higher is better)
	var replyScore float64
	switch {
	case replyRate >= cfg.ReplyRateGood:
		replyScore = 100
	case replyRate <= 0:
		replyScore = 0
	default:
		replyScore = 100 * (replyRate / cfg.ReplyRateGood)
	}

	// Complaint rate score (lower is better)
	var complaintScore float64
	switch {
	case complaintRate <= 0:
		complaintScore = 100
	case complaintRate >= cfg.ComplaintRateBad:
		complaintScore = 0
	default:
		complaintScore = 100 * (1 - complaintRate/cfg.ComplaintRateBad)
	}

	// Age score, capped
	var ageScore float64
	if ageDays >= cfg.AgeCapDays {
		ageScore = 100
	} else {
		ageScore = 100 * float64(ageDays) / float64(cfg.AgeCapDays)
	}

	totalWeight := cfg.WeightBounceRate + cfg.WeightReplyRate + cfg.WeightComplaintRate + cfg.WeightAge
	var healthScore float64
	if totalWeight > 0 {
		healthScore = (bounceScore*float64(cfg.WeightBounceRate) +
			replyScore*float64(cfg.WeightReplyRate) +
			complaintScore*float64(cfg.WeightComplaintRate) +
			ageScore*float64(cfg.WeightAge)) / float64(totalWeight)
	}

	return HealthBreakdown{
		HealthScore:    round1(healthScore),
		BounceScore:    round1(bounceScore),
		ReplyScore:     round1(replyScore),
		ComplaintScore: round1(complaintScore),
		AgeScore:       round1(ageScore),
		BounceRate:     round2(bounceRate),
		ReplyRate:      round2(replyRate),
		ComplaintRate:  round3(complaintRate),
		AccountAgeDays: ageDays,
		Scored:         true,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
