package warmup

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

const replyStaleWindow = 24 * time.Hour

type AutoReplyResult struct {
	Skipped         bool   `json:"skipped"`
	SkipReason      string `json:"skipReason,omitempty"`
	TotalCandidates int    `json:"totalCandidates"`
	Replied         int    `json:"replied"`
	SkippedEmails   int    `json:"skippedEmails"`
	Failed          int    `json:"failed"`
}

// RunAutoReplyCycle answers a random share of recently sent peer emails.
// Candidates are rows whose persisted reply_eligible_at has passed and that
// are younger than the 24h stale window; the reply-rate draw then decides
// whether each one actually gets a reply.
func (s *Service) RunAutoReplyCycle(ctx context.Context) (*AutoReplyResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunAutoReplyCycle")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	cfg := LoadConfig(ctx, s.repositories.Settings)

	if !cfg.AutoReplyEnabled {
		s.log.Info("auto-reply disabled, skipping cycle")
		return &AutoReplyResult{Skipped: true, SkipReason: "auto-reply disabled"}, nil
	}
	now := utils.Now()
	if !IsSendWindowOpen(now, cfg) {
		s.log.Info("outside send window, skipping auto-reply cycle")
		return &AutoReplyResult{Skipped: true, SkipReason: "outside send window"}, nil
	}

	candidates, err := s.repositories.WarmupEmailRepository.GetReplyCandidates(ctx, now, now.Add(-replyStaleWindow))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result := &AutoReplyResult{TotalCandidates: len(candidates)}
	for _, candidate := range candidates {
		// Random skip produces the configured, sub-100% reply rate.
		if s.randFloat() > cfg.ReplyRateTarget {
			result.SkippedEmails++
			continue
		}
		if err := s.replyTo(ctx, candidate, cfg); err != nil {
			if stderrors.Is(err, errors.ErrAlreadyReplied) || stderrors.Is(err, errors.ErrQuotaExceeded) {
				result.SkippedEmails++
				continue
			}
			result.Failed++
			s.log.Warnf("auto-reply for email %s failed: %v", candidate.ID, err)
			continue
		}
		result.Replied++
	}

	span.LogKV("result.candidates", result.TotalCandidates, "result.replied", result.Replied, "result.failed", result.Failed)
	return result, nil
}

func (s *Service) replyTo(ctx context.Context, original *models.WarmupEmail, cfg *Config) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.replyTo")
	defer span.Finish()

	if original.ReceiverMailboxID == nil {
		return errors.ErrMailboxNotFound
	}

	// The original receiver authors the reply back to the original sender.
	replier, err := s.repositories.MailboxRepository.GetMailbox(ctx, *original.ReceiverMailboxID)
	if err != nil {
		return err
	}
	if !replier.IsActive || replier.ConnectionStatus != enum.ConnectionStatusSuccessful {
		return errors.ErrProviderNotConfigured
	}
	originalSender, err := s.repositories.MailboxRepository.GetMailbox(ctx, original.SenderMailboxID)
	if err != nil {
		return err
	}

	// The reply consumes the replier's own daily quota.
	if err := s.repositories.MailboxRepository.IncrementSendCounters(ctx, replier.ID); err != nil {
		return err
	}

	content := s.content.GenerateReplyContent(ctx, original.Subject, original.BodyText, replier.SenderName())

	sendResult, err := s.sender.Send(ctx, replier, originalSender.EmailAddress, content.Subject, content.BodyHTML, content.BodyText)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	now := utils.Now()
	if err := s.repositories.WarmupEmailRepository.MarkReplied(ctx, original.ID, now); err != nil {
		return err
	}
	if err := s.repositories.MailboxRepository.IncrementReplyCounters(ctx, originalSender.ID); err != nil {
		s.log.Warnf("failed to bump reply counters for %s: %v", originalSender.ID, err)
	}

	replyRecord := &models.WarmupEmail{
		SenderMailboxID:   replier.ID,
		ReceiverMailboxID: &originalSender.ID,
		Subject:           content.Subject,
		BodyHTML:          content.BodyHTML,
		BodyText:          content.BodyText,
		MessageID:         sendResult.MessageID,
		Status:            enum.WarmupEmailStatusSent,
		AIGenerated:       content.AIGenerated,
		AIProvider:        content.AIProvider,
		SentAt:            now,
	}
	if err := s.repositories.WarmupEmailRepository.Create(ctx, replyRecord); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
