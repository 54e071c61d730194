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

type PeerCycleResult struct {
	Skipped    bool             `json:"skipped"`
	SkipReason string           `json:"skipReason,omitempty"`
	Total      int              `json:"total"`
	Sent       int              `json:"sent"`
	Failed     int              `json:"failed"`
	Details    []PeerSendDetail `json:"details"`
}

type PeerSendDetail struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// RunPeerCycle sends synthetic warmup mail between eligible mailboxes. When
// mailboxID is set only that sender is processed (on-demand trigger); the
// send-window and eligibility rules still apply.
func (s *Service) RunPeerCycle(ctx context.Context, mailboxID string) (*PeerCycleResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunPeerCycle")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	cfg := LoadConfig(ctx, s.repositories.Settings)

	if !cfg.PeerEnabled {
		s.log.Info("peer warmup disabled, skipping cycle")
		return &PeerCycleResult{Skipped: true, SkipReason: "peer warmup disabled"}, nil
	}
	if !IsSendWindowOpen(utils.Now(), cfg) {
		s.log.Info("outside send window, skipping peer warmup cycle")
		return &PeerCycleResult{Skipped: true, SkipReason: "outside send window"}, nil
	}

	senders, err := s.repositories.MailboxRepository.GetMailboxesByStatus(ctx, enum.WarmupStatusWarmingUp, enum.WarmupStatusRecovering)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result := &PeerCycleResult{}
	for _, sender := range senders {
		if mailboxID != "" && sender.ID != mailboxID {
			continue
		}
		if !sender.IsWarmupEligible() || sender.RemainingDailyQuota() == 0 {
			continue
		}
		s.dispatchForSender(ctx, sender, senders, result)
	}

	span.LogKV("result.total", result.Total, "result.sent", result.Sent, "result.failed", result.Failed)
	return result, nil
}

func (s *Service) dispatchForSender(ctx context.Context, sender *models.Mailbox, pool []*models.Mailbox, result *PeerCycleResult) {
	cfg := s.loadConfigFor(ctx, sender)

	peers := s.pickPeers(sender, pool, cfg.PeerMaxPerPair)
	for _, peer := range peers {
		sent, err := s.sendWarmupEmail(ctx, sender, peer, cfg)
		if err != nil {
			if stderrors.Is(err, errors.ErrQuotaExceeded) {
				break
			}
			result.Total++
			result.Failed++
			result.Details = append(result.Details, PeerSendDetail{
				Sender:   sender.EmailAddress,
				Receiver: peer.EmailAddress,
				Success:  false,
				Error:    err.Error(),
			})
			s.log.Warnf("warmup send %s -> %s failed: %v", sender.EmailAddress, peer.EmailAddress, err)
			continue
		}
		if sent {
			result.Total++
			result.Sent++
			result.Details = append(result.Details, PeerSendDetail{
				Sender:   sender.EmailAddress,
				Receiver: peer.EmailAddress,
				Success:  true,
			})
		}
	}
}

// pickPeers selects up to max random peers sharing warmup eligibility,
// excluding the sender itself.
func (s *Service) pickPeers(sender *models.Mailbox, pool []*models.Mailbox, max int) []*models.Mailbox {
	candidates := make([]*models.Mailbox, 0, len(pool))
	for _, mb := range pool {
		if mb.ID == sender.ID || !mb.IsWarmupEligible() {
			continue
		}
		candidates = append(candidates, mb)
	}
	if len(candidates) == 0 {
		return nil
	}
	s.shuffleMailboxes(candidates)
	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// sendWarmupEmail performs one peer send. The quota counter is claimed first
// through a guarded update, so a sender can never exceed its daily limit even
// when several jobs run concurrently. Reports whether a message went out.
func (s *Service) sendWarmupEmail(ctx context.Context, sender, peer *models.Mailbox, cfg *Config) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.sendWarmupEmail")
	defer span.Finish()
	tracing.TagMailbox(span, sender.ID)

	// Claim quota before the SMTP call. ErrQuotaExceeded ends this sender's turn.
	if err := s.repositories.MailboxRepository.IncrementSendCounters(ctx, sender.ID); err != nil {
		if !stderrors.Is(err, errors.ErrQuotaExceeded) {
			tracing.TraceErr(span, err)
		}
		return false, err
	}

	content := s.content.GenerateWarmupContent(ctx, sender.SenderName(), peer.SenderName())

	now := utils.Now()
	record := &models.WarmupEmail{
		SenderMailboxID:   sender.ID,
		ReceiverMailboxID: &peer.ID,
		Subject:           content.Subject,
		BodyText:          content.BodyText,
		AIGenerated:       content.AIGenerated,
		AIProvider:        content.AIProvider,
		SentAt:            now,
		Status:            enum.WarmupEmailStatusSent,
		ReplyEligibleAt:   utils.TimePtr(now.Add(time.Duration(s.randRange(cfg.ReplyMinDelayMin, cfg.ReplyMaxDelayMin)) * time.Minute)),
	}
	record.TrackingID = utils.GenerateTrackingID()
	record.BodyHTML = InjectTrackingPixel(content.BodyHTML, record.TrackingID, s.trackingURL)

	sendResult, sendErr := s.sender.Send(ctx, sender, peer.EmailAddress, record.Subject, record.BodyHTML, record.BodyText)
	if sendErr != nil {
		record.Status = enum.WarmupEmailStatusFailed
	} else {
		record.MessageID = sendResult.MessageID
	}

	if err := s.repositories.WarmupEmailRepository.Create(ctx, record); err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}

	if sendErr != nil {
		tracing.TraceErr(span, sendErr)
		return false, sendErr
	}

	if err := s.repositories.MailboxRepository.IncrementReceivedCounter(ctx, peer.ID); err != nil {
		s.log.Warnf("failed to bump received counter for %s: %v", peer.ID, err)
	}
	// Keep the in-memory copy honest for the rest of the cycle.
	sender.EmailsSentToday++
	sender.TotalEmailsSent++
	return true, nil
}
