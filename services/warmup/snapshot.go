package warmup

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

type SnapshotResult struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// RunDailySnapshot writes one daily log row per active mailbox. Existing rows
// for the day are left untouched, so the job is safe to re-run.
func (s *Service) RunDailySnapshot(ctx context.Context) (*SnapshotResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunDailySnapshot")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	mailboxes, err := s.repositories.MailboxRepository.GetActiveMailboxes(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	now := utils.Now()
	today := utils.StartOfDay(now)
	result := &SnapshotResult{}

	for _, mailbox := range mailboxes {
		cfg := s.loadConfigFor(ctx, mailbox)
		health := CalculateHealthScore(mailbox, cfg, now)

		phase := 0
		if mailbox.WarmupDaysCompleted > 0 {
			phase, _ = PhaseForDay(mailbox.WarmupDaysCompleted, cfg)
		}

		log := &models.WarmupDailyLog{
			MailboxID:   mailbox.ID,
			LogDate:     today,
			EmailsSent:  mailbox.EmailsSentToday,
			EmailsRecvd: mailbox.WarmupEmailsReceived,
			Opens:       mailbox.WarmupOpens,
			Replies:     mailbox.WarmupReplies,
			Bounces:     mailbox.BounceCount,
			HealthScore: health.HealthScore,
			WarmupDay:   mailbox.WarmupDaysCompleted,
			Phase:       phase,
			DailyLimit:  mailbox.DailySendLimit,
			BounceRate:  health.BounceRate,
			ReplyRate:   health.ReplyRate,
			Blacklisted: mailbox.IsBlacklisted,
		}

		created, err := s.repositories.WarmupDailyLogRepository.CreateIfAbsent(ctx, log)
		if err != nil {
			result.Errors++
			s.log.Errorf("daily snapshot failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		if created {
			result.Written++
		} else {
			result.Skipped++
		}
	}

	span.LogKV("result.written", result.Written, "result.skipped", result.Skipped, "result.errors", result.Errors)
	return result, nil
}

// ResetDailyQuotas clears emails_sent_today for every mailbox. Runs at
// midnight before the first peer cycle of the day.
func (s *Service) ResetDailyQuotas(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.ResetDailyQuotas")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	reset, err := s.repositories.MailboxRepository.ResetDailyCounters(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	s.log.Infof("daily quota reset cleared %d mailboxes", reset)
	return reset, nil
}

// SendEligibility is the read-only answer for the outreach pipeline when it
// picks a sender for a real campaign email.
type SendEligibility struct {
	MailboxID      string `json:"mailboxId"`
	WarmupStatus   string `json:"warmupStatus"`
	Eligible       bool   `json:"eligible"`
	RemainingQuota int    `json:"remainingQuota"`
}

func (s *Service) CheckSendEligibility(ctx context.Context, mailboxID string) (*SendEligibility, error) {
	mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
	if err != nil {
		return nil, err
	}
	return &SendEligibility{
		MailboxID:      mailbox.ID,
		WarmupStatus:   mailbox.WarmupStatus.String(),
		Eligible:       mailbox.CanSend(),
		RemainingQuota: mailbox.RemainingDailyQuota(),
	}, nil
}
